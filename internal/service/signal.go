package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/trusthire/trusthire/internal/domain"
)

const signalChannelPrefix = "notify:"

// SignalService fans user-facing events out over redis pub/sub. The
// websocket endpoint subscribes per user; publishers never block on
// delivery.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

// Publish sends an event to the user's notification channel.
func (s *SignalService) Publish(ctx context.Context, userID string, event domain.Event) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, signalChannelPrefix+userID, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Stream subscribes to a user's channel and forwards decoded events to
// output until the context ends. Undecodable payloads are skipped.
func (s *SignalService) Stream(ctx context.Context, userID string, output chan<- domain.Event) error {
	pubsub := s.rdb.Subscribe(ctx, signalChannelPrefix+userID)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
