package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rufit/rufitserver/internal"
	"github.com/rufit/rufitserver/internal/config"
	"github.com/rufit/rufitserver/internal/logging"
	"github.com/rufit/rufitserver/pkg"
)

var (
	env        string
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rufit",
	Short: "RU Fit backend - workout log and training recommendations",
	Long: `RU Fit backend serves the workout log, user profiles, the exercise catalog
and per-exercise training recommendations over HTTP.

Run without a subcommand (or with "serve") to start the server,
use "migrate" to apply the database migrations and exit.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Warnf("---->> running in [%s] environment", env)

		var err error
		cfg, err = config.Load(env, configPath)
		if err != nil {
			return err
		}

		logging.Setup(logging.LoggerSetupParams{
			LogsPath:         cfg.LogsPath,
			LogToStdout:      cfg.LogToStdout,
			LogLevel:         cfg.LogLevel,
			LogFormatJSON:    cfg.LogFormatJSON,
			Environment:      cfg.Environment,
			SentryEnabled:    cfg.SentryEnabled,
			SentryDSN:        os.Getenv("SENTRY_DSN"),
			SentryServerName: "rufit-service",
		})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and metrics servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(context.Background())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.toml", "path for the TOML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	fmt.Println("starting ...")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve() error {
	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	dbPassword := os.Getenv("RUFIT_DB_PASSWORD")
	if dbPassword == "" {
		log.Warnln("db password not set. use RUFIT_DB_PASSWORD")
	}

	redisPassword := os.Getenv("RUFIT_REDIS_PASS")
	if redisPassword == "" {
		log.Errorf("redis password not set. use RUFIT_REDIS_PASS")
	}

	if otelServiceName := os.Getenv("OTEL_SERVICE_NAME"); otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             versionInfo,
			DBPassword:              dbPassword,
			RedisPassword:           redisPassword,
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
	return nil
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pkg.BytesToString(stdout)), nil
}
