package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-timeline/internal/entity"
)

// Client fans game states out to every connection watching a session.
type Client struct {
	logger *slog.Logger
	client *redis.Client
}

func New(logger *slog.Logger, client *redis.Client) *Client {
	return &Client{
		logger: logger.With("component", "broadcast"),
		client: client,
	}
}

func eventsChannel(sessionID string) string {
	return "session:" + sessionID + ":events"
}

// Publish - sends the state to the subscribers of its session.
func (that *Client) Publish(ctx context.Context, state *entity.GameState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	if err = that.client.Publish(ctx, eventsChannel(state.SessionID), stateJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game state: %w", err)
	}

	return nil
}

// Subscribe - streams the states published for the session until ctx is done.
// The returned channel is closed once the subscription ends.
func (that *Client) Subscribe(ctx context.Context, sessionID string) (<-chan *entity.GameState, error) {
	log := that.logger.With("method", "Subscribe", "session", sessionID)

	pubsub := that.client.Subscribe(ctx, eventsChannel(sessionID))

	// wait for the confirmation so no publish after this call is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to session: %w", err)
	}

	states := make(chan *entity.GameState)

	go func() {
		defer close(states)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var state entity.GameState
				if err := json.Unmarshal([]byte(msg.Payload), &state); err != nil {
					log.Error("failed to unmarshal game state", "error", err)
					continue
				}

				select {
				case states <- &state:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return states, nil
}
