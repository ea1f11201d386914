package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-timeline/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timeline/internal/entity"
)

var ErrTooManyConflicts = errors.New("session changed concurrently too many times")

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, id string, fn func(session *entity.Session) error) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type dbSession struct {
	client  *redis.Client
	ttl     time.Duration
	retries int
}

// NewSessionRepository - stores sessions as JSON under "session:<id>".
// A zero ttl keeps sessions forever.
func NewSessionRepository(client *redis.Client, ttl time.Duration, retries int) SessionRepository {
	if retries < 1 {
		retries = 1
	}

	return &dbSession{
		client:  client,
		ttl:     ttl,
		retries: retries,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (that *dbSession) Create(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	if err = that.client.Set(ctx, sessionKey(session.ID), sessionJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	return that.get(ctx, that.client, id)
}

// Update - loads the session, applies fn and writes it back if nobody changed it meanwhile.
// An error from fn aborts the update and is returned with the session as it was loaded.
func (that *dbSession) Update(ctx context.Context, id string, fn func(session *entity.Session) error) (*entity.Session, error) {
	key := sessionKey(id)

	var (
		session *entity.Session
		fnErr   error
	)

	txf := func(tx *redis.Tx) error {
		fnErr = nil

		loaded, err := that.get(ctx, tx, id)
		if err != nil {
			return err
		}

		session = loaded

		if fnErr = fn(session); fnErr != nil {
			return fnErr
		}

		sessionJSON, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("could not marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, that.ttl)
			return nil
		})

		return err
	}

	for attempt := 0; attempt < that.retries; attempt++ {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if fnErr != nil {
			return session, fnErr
		}

		if err != nil {
			return nil, fmt.Errorf("failed to update session: %w", err)
		}

		return session, nil
	}

	return nil, fmt.Errorf("%w: session %s", ErrTooManyConflicts, id)
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by ID: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func (that *dbSession) get(ctx context.Context, client getter, id string) (*entity.Session, error) {
	response, err := client.Get(ctx, sessionKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by ID: %w", err)
	}

	var existing entity.Session
	if err = json.Unmarshal([]byte(response), &existing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &existing, nil
}
