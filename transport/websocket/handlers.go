package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timeline/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timeline/internal/entity"
)

// handleConnect - attaches the connection to a session, creating one when the id is empty or stale.
func (that *Server) handleConnect(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	var state *entity.GameState
	if payloadReq.SessionID != "" {
		state, err = that.sessions.GetState(ctx, payloadReq.SessionID)
		if errors.Is(err, apperror.ErrSessionNotFound) {
			log.Info("session not found, creating a new one", "session", payloadReq.SessionID)
			state, err = nil, nil
		}
	}

	if err == nil && state == nil {
		state, err = that.sessions.CreateSession(ctx)
	}

	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if err = that.watch(ctx, conn, state.SessionID); err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	log.Info("connected to session", "session", state.SessionID)

	return conn.send(msg.Action, Payload{SessionID: state.SessionID, Game: state})
}

func (that *Server) handleMove(ctx context.Context, conn *connection, msg *Message) error {
	payloadReq, sessionID, err := that.sessionPayload(conn, msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if payloadReq.Cell == nil {
		return conn.sendError(msg.Action, "cell is required")
	}

	state, err := that.sessions.MakeMove(ctx, sessionID, *payloadReq.Cell)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	return conn.send(msg.Action, Payload{SessionID: sessionID, Game: state})
}

func (that *Server) handleJump(ctx context.Context, conn *connection, msg *Message) error {
	payloadReq, sessionID, err := that.sessionPayload(conn, msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	if payloadReq.Index == nil {
		return conn.sendError(msg.Action, "index is required")
	}

	state, err := that.sessions.JumpTo(ctx, sessionID, *payloadReq.Index)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	return conn.send(msg.Action, Payload{SessionID: sessionID, Game: state})
}

func (that *Server) handleRestart(ctx context.Context, conn *connection, msg *Message) error {
	_, sessionID, err := that.sessionPayload(conn, msg)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	state, err := that.sessions.Restart(ctx, sessionID)
	if err != nil {
		return that.replyError(conn, msg.Action, err)
	}

	return conn.send(msg.Action, Payload{SessionID: sessionID, Game: state})
}

// watch - forwards every state published for the session to the connection.
func (that *Server) watch(ctx context.Context, conn *connection, sessionID string) error {
	if conn.session() == sessionID {
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)

	states, err := that.subscriber.Subscribe(watchCtx, sessionID)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to session: %w", err)
	}

	conn.watch(sessionID, cancel)

	go func() {
		for state := range states {
			if err := conn.send(actionState, Payload{SessionID: sessionID, Game: state}); err != nil {
				that.logger.Error("failed to push game state", "session", sessionID, "error", err)
				cancel()
			}
		}
	}()

	return nil
}

// sessionPayload - decodes the payload and resolves the session the action applies to.
func (that *Server) sessionPayload(conn *connection, msg *Message) (*Payload, string, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return nil, "", err
	}

	sessionID := conn.session()
	if sessionID == "" {
		return nil, "", errNotConnected
	}

	return payloadReq, sessionID, nil
}

var (
	errNotConnected   = errors.New("connect to a session first")
	errMalformedInput = errors.New("malformed payload")
)

func decodePayload(msg *Message) (*Payload, error) {
	var payloadReq Payload
	if len(msg.Payload) == 0 {
		return &payloadReq, nil
	}

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedInput, err)
	}

	return &payloadReq, nil
}

// replyError - tells the client what went wrong without leaking internal errors.
func (that *Server) replyError(conn *connection, action string, err error) error {
	text := "Internal Server Error"

	for _, known := range []error{
		errNotConnected,
		errMalformedInput,
		apperror.ErrSessionNotFound,
		apperror.ErrInvalidCell,
		apperror.ErrInvalidHistoryIndex,
	} {
		if errors.Is(err, known) {
			text = known.Error()
			break
		}
	}

	if sendErr := conn.sendError(action, text); sendErr != nil {
		return sendErr
	}

	return err
}
