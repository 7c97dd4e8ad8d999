// Package queue delivers execution events to a message broker.
package queue

import "context"

// Publisher publishes messages to a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// Subscriber consumes messages from a subject
type Subscriber interface {
	// Subscribe registers handler for subject. A handler error leaves the
	// message unacknowledged where the broker supports redelivery.
	Subscribe(subject string, handler MessageHandler) error
	Unsubscribe(subject string) error
	Close() error
}

// MessageHandler handles incoming messages
type MessageHandler func(data []byte) error

// Queue combines Publisher and Subscriber
type Queue interface {
	Publisher
	Subscriber
}

// Subject joins the configured prefix and an event name.
func Subject(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
