package recommendation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/internal/telemetry/tracing"
)

const plateauKeyPrefix = "rufit-plateau||"

// PlateauStore keeps the last plateau strategy per (user, exercise).
type PlateauStore interface {
	Load(ctx context.Context, userID int) (map[string]Strategy, error)
	Save(ctx context.Context, userID int, exercise string, strategy Strategy) error
}

// EphemeralPlateauStore remembers nothing, so every run starts the cycle afresh.
type EphemeralPlateauStore struct{}

func (EphemeralPlateauStore) Load(context.Context, int) (map[string]Strategy, error) {
	return map[string]Strategy{}, nil
}

func (EphemeralPlateauStore) Save(context.Context, int, string, Strategy) error {
	return nil
}

func (EphemeralPlateauStore) Forget(context.Context, int) error {
	return nil
}

// RedisPlateauStore keeps one hash per user, exercise -> strategy index, without TTL.
type RedisPlateauStore struct {
	redisClient *redis.Client
}

func NewRedisPlateauStore(redisClient *redis.Client) *RedisPlateauStore {
	return &RedisPlateauStore{
		redisClient: redisClient,
	}
}

func plateauKey(userID int) string {
	return plateauKeyPrefix + strconv.Itoa(userID)
}

func (s *RedisPlateauStore) Load(ctx context.Context, userID int) (_ map[string]Strategy, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.plateau.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stored, err := s.redisClient.HGetAll(ctx, plateauKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get plateau state: %w", err)
	}

	states := make(map[string]Strategy, len(stored))
	for exercise, raw := range stored {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			// an unreadable value restarts the cycle for that exercise
			log.Warnf("plateau state for user %d, exercise [%s]: invalid value [%s]", userID, exercise, raw)
			continue
		}
		states[exercise] = Strategy(idx)
	}

	return states, nil
}

func (s *RedisPlateauStore) Save(ctx context.Context, userID int, exercise string, strategy Strategy) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.plateau.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.redisClient.HSet(ctx, plateauKey(userID), exercise, int(strategy)).Err(); err != nil {
		return fmt.Errorf("save plateau state: %w", err)
	}
	return nil
}

// Forget drops the whole cycle state of a user.
func (s *RedisPlateauStore) Forget(ctx context.Context, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.plateau.forget")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.redisClient.Del(ctx, plateauKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete plateau state: %w", err)
	}
	return nil
}
