package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-timeline/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timeline/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timeline/internal/tictactoe"
)

type sessionRepo interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, id string, fn func(session *entity.Session) error) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type publisher interface {
	Publish(ctx context.Context, state *entity.GameState) error
}

type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	publisher   publisher
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, publisher publisher) *SessionManager {
	return &SessionManager{
		logger: logger.With("component", "session_manager"),

		sessionRepo: sessionRepo,
		publisher:   publisher,
	}
}

func (that *SessionManager) CreateSession(ctx context.Context) (*entity.GameState, error) {
	session := entity.NewSession(uuid.NewString())

	if err := that.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "session", session.ID)

	return tictactoe.State(session), nil
}

func (that *SessionManager) GetState(ctx context.Context, id string) (*entity.GameState, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err = tictactoe.Validate(session); err != nil {
		return nil, err
	}

	return tictactoe.State(session), nil
}

// MakeMove - plays the cell for whoever's turn it is on the displayed board.
// A move on an occupied cell or a won board is ignored and the unchanged state is returned.
func (that *SessionManager) MakeMove(ctx context.Context, id string, cell int) (*entity.GameState, error) {
	log := that.logger.With("method", "MakeMove", "session", id, "cell", cell)

	session, err := that.sessionRepo.Update(ctx, id, func(session *entity.Session) error {
		if err := tictactoe.Validate(session); err != nil {
			return err
		}
		return tictactoe.MakeTurn(session, cell)
	})

	if apperror.IsRejectedMove(err) {
		log.Debug("move ignored", "reason", err)
		return tictactoe.State(session), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	return that.publish(ctx, session), nil
}

// JumpTo - shows the board reached after the given number of moves.
func (that *SessionManager) JumpTo(ctx context.Context, id string, index int) (*entity.GameState, error) {
	session, err := that.sessionRepo.Update(ctx, id, func(session *entity.Session) error {
		if err := tictactoe.Validate(session); err != nil {
			return err
		}
		return tictactoe.JumpTo(session, index)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to jump to move: %w", err)
	}

	return that.publish(ctx, session), nil
}

// Restart - goes back to the empty board. Previous moves stay reachable until the next move.
func (that *SessionManager) Restart(ctx context.Context, id string) (*entity.GameState, error) {
	session, err := that.sessionRepo.Update(ctx, id, func(session *entity.Session) error {
		if err := tictactoe.Validate(session); err != nil {
			return err
		}
		tictactoe.Restart(session)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restart game: %w", err)
	}

	return that.publish(ctx, session), nil
}

func (that *SessionManager) DeleteSession(ctx context.Context, id string) error {
	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session deleted", "session", id)

	return nil
}

// publish - builds the state and notifies the watchers. A failed publish does not fail the change.
func (that *SessionManager) publish(ctx context.Context, session *entity.Session) *entity.GameState {
	state := tictactoe.State(session)

	if err := that.publisher.Publish(ctx, state); err != nil {
		that.logger.Error("failed to publish game state", "session", session.ID, "error", err)
	}

	return state
}
