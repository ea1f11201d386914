package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-timeline/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timeline/internal/entity"
)

type sessionUseCase interface {
	CreateSession(ctx context.Context) (*entity.GameState, error)
	GetState(ctx context.Context, id string) (*entity.GameState, error)
	MakeMove(ctx context.Context, id string, cell int) (*entity.GameState, error)
	JumpTo(ctx context.Context, id string, index int) (*entity.GameState, error)
	Restart(ctx context.Context, id string) (*entity.GameState, error)
	DeleteSession(ctx context.Context, id string) error
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Index *int `json:"index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type SessionHandler struct {
	logger   *slog.Logger
	sessions sessionUseCase
}

func NewSessionHandler(logger *slog.Logger, sessions sessionUseCase) *SessionHandler {
	return &SessionHandler{
		logger:   logger,
		sessions: sessions,
	}
}

func (that *SessionHandler) Create(ctx echo.Context) error {
	state, err := that.sessions.CreateSession(ctx.Request().Context())
	if err != nil {
		return that.fail(ctx, "Create", err)
	}

	return ctx.JSON(http.StatusCreated, state)
}

func (that *SessionHandler) Get(ctx echo.Context) error {
	state, err := that.sessions.GetState(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.fail(ctx, "Get", err)
	}

	return ctx.JSON(http.StatusOK, state)
}

func (that *SessionHandler) Delete(ctx echo.Context) error {
	if err := that.sessions.DeleteSession(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return that.fail(ctx, "Delete", err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (that *SessionHandler) Move(ctx echo.Context) error {
	var req moveRequest
	if err := ctx.Bind(&req); err != nil || req.Cell == nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "cell is required"})
	}

	state, err := that.sessions.MakeMove(ctx.Request().Context(), ctx.Param("id"), *req.Cell)
	if err != nil {
		return that.fail(ctx, "Move", err)
	}

	return ctx.JSON(http.StatusOK, state)
}

func (that *SessionHandler) Jump(ctx echo.Context) error {
	var req jumpRequest
	if err := ctx.Bind(&req); err != nil || req.Index == nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "index is required"})
	}

	state, err := that.sessions.JumpTo(ctx.Request().Context(), ctx.Param("id"), *req.Index)
	if err != nil {
		return that.fail(ctx, "Jump", err)
	}

	return ctx.JSON(http.StatusOK, state)
}

func (that *SessionHandler) Restart(ctx echo.Context) error {
	state, err := that.sessions.Restart(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.fail(ctx, "Restart", err)
	}

	return ctx.JSON(http.StatusOK, state)
}

// fail - maps use case errors to HTTP statuses.
func (that *SessionHandler) fail(ctx echo.Context, method string, err error) error {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return ctx.JSON(http.StatusNotFound, errorResponse{Error: apperror.ErrSessionNotFound.Error()})
	case errors.Is(err, apperror.ErrInvalidCell):
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidCell.Error()})
	case errors.Is(err, apperror.ErrInvalidHistoryIndex):
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidHistoryIndex.Error()})
	}

	that.logger.Error("request failed", "method", method, "session", ctx.Param("id"), "error", err)

	return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
}
