// Package redis wraps the go-redis client used for outcome events and the
// emotion log.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Redis struct {
	Client         *redis.Client
	Logger         *zap.SugaredLogger
	OutcomeChannel string
}

func New(host, password, outcomeChannel string, logger *zap.SugaredLogger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     host,
		Password: password,
	})

	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Redis{
		Client:         client,
		Logger:         logger,
		OutcomeChannel: outcomeChannel,
	}, nil
}

// Produce publishes data as JSON on the outcome channel.
func (r *Redis) Produce(ctx context.Context, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	err = r.Client.Publish(ctx, r.OutcomeChannel, jsonData).Err()
	if err != nil {
		return err
	}

	r.Logger.Infow("redis: Produce", "channel", r.OutcomeChannel)

	return nil
}

// Consume subscribes to the outcome channel. The subscription is closed when
// ctx is done.
func (r *Redis) Consume(ctx context.Context) <-chan *redis.Message {
	sub := r.Client.Subscribe(ctx, r.OutcomeChannel)

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub.Channel()
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
