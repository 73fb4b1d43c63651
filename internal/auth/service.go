package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/pkg"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "rufit-session||"
	tokensSetKey     = "rufit-sessions"
	tokenLength      = 35
)

var (
	ErrWrongPassword = errors.New("wrong credentials")
	ErrUserExists    = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginSession struct {
	Token     string
	UserID    int
	CreatedAt time.Time
}

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

type usersRepo interface {
	Create(ctx context.Context, username, email, passwordHash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Delete(ctx context.Context, userID int) error
}

// userDataCleaner drops per-user state kept outside postgres when an account goes away.
type userDataCleaner interface {
	Forget(ctx context.Context, userID int) error
}

type Service struct {
	redisClient *redis.Client
	users       usersRepo
	cleaners    []userDataCleaner
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	// password hashing is injectable so tests don't pay the bcrypt cost
	HashPasswordFunc func(password string) (string, error)
}

func NewService(
	ttl time.Duration,
	redisClient *redis.Client,
	users usersRepo,
	cleaners ...userDataCleaner,
) *Service {
	return &Service{
		ttl:              ttl,
		redisClient:      redisClient,
		users:            users,
		cleaners:         cleaners,
		RandStringFunc:   pkg.GenerateRandomString,
		HashPasswordFunc: pkg.HashPassword,
	}
}

func sessionValue(userID int, createdAt time.Time) string {
	return fmt.Sprintf("%d|%d", userID, createdAt.Unix())
}

func parseSessionValue(val string) (int, time.Time, error) {
	userIDStr, createdAtStr, found := strings.Cut(val, "|")
	if !found {
		return 0, time.Time{}, fmt.Errorf("malformed session value [%s]", val)
	}
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("session user id: %w", err)
	}
	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("session created at: %w", err)
	}
	return userID, time.Unix(createdAtUnix, 0), nil
}

func (as *Service) Register(ctx context.Context, creds Credentials, email string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	passwordHash, err := as.HashPasswordFunc(creds.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	userID, err := as.users.Create(ctx, creds.Username, email, passwordHash)
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("user.id", userID))
	return userID, nil
}

func (as *Service) Login(ctx context.Context, creds Credentials, createdAt time.Time) (_ *LoginSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := as.users.GetByUsername(ctx, creds.Username)
	if errors.Is(err, ErrUserNotFound) {
		log.Tracef("[username] failed login attempt for user: %s", creds.Username)
		return nil, ErrWrongPassword
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !pkg.CheckPasswordHash(creds.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", creds.Username)
		return nil, ErrWrongPassword
	}

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return nil, err
	}

	sessionKey := sessionKeyPrefix + token
	cmdSet := as.redisClient.Set(ctx, sessionKey, sessionValue(user.ID, createdAt), 0)
	if err := cmdSet.Err(); err != nil {
		return nil, err
	}

	// add token to list of sessions
	cmdSAdd := as.redisClient.SAdd(ctx, tokensSetKey, token)
	if err := cmdSAdd.Err(); err != nil {
		return nil, err
	}

	return &LoginSession{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: createdAt,
	}, nil
}

// UserIDForToken resolves a bearer token to its user, failing with
// ErrInvalidToken for unknown or expired sessions.
func (as *Service) UserIDForToken(ctx context.Context, token string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.userIdForToken")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cmd := as.redisClient.Get(ctx, sessionKeyPrefix+token)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalidToken
		}
		return 0, err
	}

	userID, createdAt, err := parseSessionValue(cmd.Val())
	if err != nil {
		log.Warnf("auth service, token %s: %s", token, err)
		return 0, ErrInvalidToken
	}

	if time.Since(createdAt) > as.ttl {
		return 0, ErrInvalidToken
	}

	return userID, nil
}

func (as *Service) Logout(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.logout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessionKey := sessionKeyPrefix + token
	cmdDel := as.redisClient.Del(ctx, sessionKey)
	if err := cmdDel.Err(); err != nil {
		return false, err
	}

	// remove token from the list of sessions
	cmdSRem := as.redisClient.SRem(ctx, tokensSetKey, token)
	if err := cmdSRem.Err(); err != nil {
		return false, err
	}

	return cmdDel.Val() > 0, nil
}

// DeleteAccount removes the user (with all owned data), ends every session of
// the user and drops the user's state kept in redis.
func (as *Service) DeleteAccount(ctx context.Context, userID int, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.deleteAccount")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	if err := as.users.Delete(ctx, userID); err != nil {
		return err
	}

	if _, err := as.Logout(ctx, token); err != nil {
		log.Errorf("delete account %d, logout: %s", userID, err)
	}

	if err := as.endUserSessions(ctx, userID); err != nil {
		log.Errorf("delete account %d, end other sessions: %s", userID, err)
	}

	for _, c := range as.cleaners {
		if err := c.Forget(ctx, userID); err != nil {
			log.Errorf("delete account %d, forget user data: %s", userID, err)
		}
	}

	return nil
}

func (as *Service) endUserSessions(ctx context.Context, userID int) error {
	tokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		return fmt.Errorf("get sessions: %w", err)
	}

	for _, token := range tokens {
		val, err := as.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Errorf("end sessions of user %d, get token %s: %s", userID, token, err)
			}
			continue
		}

		owner, _, err := parseSessionValue(val)
		if err != nil || owner != userID {
			continue
		}

		if _, err := as.Logout(ctx, token); err != nil {
			log.Errorf("end sessions of user %d, token %s: %s", userID, token, err)
		}
	}

	return nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	cmd := as.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		cmd := as.redisClient.Get(ctx, sessionKeyPrefix+token)
		if err := cmd.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				// dangling token, session key already gone
				toRemove = append(toRemove, token)
				continue
			}
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		_, createdAt, err := parseSessionValue(cmd.Val())
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			toRemove = append(toRemove, token)
			continue
		}

		if time.Since(createdAt) > as.ttl {
			log.Debugf("=>\twill clean the session with token: %s", token)
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}

		// remove token from the list of sessions
		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}
	}
}
