package queue

import (
	"context"
	"fmt"
	"sync"
)

const memoryTopicCapacity = 1024

type memoryTopic struct {
	ch     chan []byte
	cancel context.CancelFunc
}

// MemoryQueue delivers messages through in-process buffered channels. A
// message published before anyone subscribes waits in the buffer.
type MemoryQueue struct {
	mu     sync.Mutex
	topics map[string]*memoryTopic
	closed bool
}

func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{topics: make(map[string]*memoryTopic)}
}

func (q *MemoryQueue) topic(subject string) (*memoryTopic, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, fmt.Errorf("memory queue closed")
	}
	t, ok := q.topics[subject]
	if !ok {
		t = &memoryTopic{ch: make(chan []byte, memoryTopicCapacity)}
		q.topics[subject] = t
	}
	return t, nil
}

// Publish enqueues a copy of data without blocking.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	t, err := q.topic(subject)
	if err != nil {
		return err
	}

	msg := append([]byte(nil), data...)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case t.ch <- msg:
		return nil
	default:
		return fmt.Errorf("subject %s is full", subject)
	}
}

func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	t, err := q.topic(subject)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if t.cancel != nil {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-t.ch:
				// no redelivery in memory
				_ = handler(msg)
			}
		}
	}()
	return nil
}

func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.topics[subject]
	if !ok || t.cancel == nil {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	t.cancel()
	t.cancel = nil
	return nil
}

// Close stops every subscription and drops pending messages.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, t := range q.topics {
		if t.cancel != nil {
			t.cancel()
		}
		delete(q.topics, subject)
	}
	q.closed = true
	return nil
}

// Pending returns the number of buffered messages of subject.
func (q *MemoryQueue) Pending(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.topics[subject]; ok {
		return len(t.ch)
	}
	return 0
}
