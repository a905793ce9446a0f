// Package pubsub is a small in-process topic broker.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoSubscribers is returned when a topic has no subscribers.
var ErrNoSubscribers = errors.New("topic has no subscribers")

type Broker struct {
	topics map[string][]*Subscriber
	sync.RWMutex
}

func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string][]*Subscriber),
	}
}

// Publish hands data to every subscriber of topic, blocking until each one
// accepts it or ctx is done. The read lock is held while signalling so a
// concurrent UnSubscribe cannot close a channel mid-send.
func (b *Broker) Publish(ctx context.Context, topic string, data any) error {
	b.RLock()
	defer b.RUnlock()
	{
		subs := b.topics[topic]
		if len(subs) == 0 {
			return fmt.Errorf("topic[%s]: %w", topic, ErrNoSubscribers)
		}

		for _, sub := range subs {
			if err := sub.Signal(ctx, data); err != nil {
				return fmt.Errorf("topic[%s]: %w", topic, err)
			}
		}
	}

	return nil
}

func (b *Broker) Subscribe(topic string, s *Subscriber) {
	b.Lock()
	defer b.Unlock()
	{
		b.topics[topic] = append(b.topics[topic], s)
	}
}

func (b *Broker) UnSubscribe(topic string, s *Subscriber) error {
	b.Lock()
	defer b.Unlock()
	{
		subs, exists := b.topics[topic]
		if !exists {
			return fmt.Errorf("topic[%s] does not exists", topic)
		}

		b.topics[topic] = removeFromSlice(subs, s)
		s.CloseChannel()
	}

	return nil
}

// Subscribers returns the number of subscribers of topic.
func (b *Broker) Subscribers(topic string) int {
	b.RLock()
	defer b.RUnlock()
	return len(b.topics[topic])
}

// =================================================================================================================

func removeFromSlice[T comparable](s []T, d T) []T {
	for i := range s {
		if s[i] == d {
			s[i] = s[len(s)-1]
			return s[:len(s)-1]
		}
	}
	return s
}
