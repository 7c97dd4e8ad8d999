package queue

import (
	"context"
	"errors"
)

// ErrDisabled is returned when subscribing to a disabled queue.
var ErrDisabled = errors.New("queue is disabled")

// nopQueue drops every message.
type nopQueue struct{}

func (nopQueue) Publish(context.Context, string, []byte) error { return nil }

func (nopQueue) Subscribe(string, MessageHandler) error { return ErrDisabled }

func (nopQueue) Unsubscribe(string) error { return ErrDisabled }

func (nopQueue) Close() error { return nil }
