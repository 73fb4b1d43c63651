package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rufit/rufitserver/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFileName = "rufit.log"

type LoggerSetupParams struct {
	// LogsPath is either a directory (logs go to rufit.log inside it) or a file name.
	LogsPath         string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if params.SentryEnabled {
		setupSentry(params)
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	fileName := logFileName(params.LogsPath)
	if fileName == "" {
		logrus.SetOutput(os.Stdout)
		logrus.Println("writing logs only to STDOUT")
		return
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		MaxAge:     30, // days
		LocalTime:  false,
		Compress:   true,
	}

	if params.LogToStdout {
		logrus.Printf("writing logs to [%s] and STDOUT", fileName)
		logrus.SetOutput(pkg.NewCombinedWriter(os.Stdout, lumberJackLogger))
	} else {
		logrus.SetOutput(lumberJackLogger)
	}
}

func setupSentry(params LoggerSetupParams) {
	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 0.2,
		ServerName:       params.SentryServerName,
	})
	if err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry set up successfully")
}

func logFileName(logsPath string) string {
	logsPath = strings.TrimSpace(logsPath)
	if logsPath == "" {
		return ""
	}

	if isDir, err := pkg.PathExists(logsPath, true); err == nil && isDir {
		return filepath.Join(logsPath, defaultLogFileName)
	}

	if !strings.HasSuffix(logsPath, ".log") {
		logsPath += ".log"
	}
	return logsPath
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn", "warning":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
