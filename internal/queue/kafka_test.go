package queue

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// isKafkaAvailable reports whether live Kafka tests were requested
func isKafkaAvailable() bool {
	return os.Getenv("KAFKA_TEST") == "1"
}

func getKafkaBrokers() []string {
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		return strings.Split(brokers, ",")
	}
	return []string{"localhost:9092"}
}

func TestNewKafkaQueue_Defaults(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("Failed to create Kafka queue: %v", err)
	}
	defer func() { _ = q.Close() }()

	if q.config.GroupID != "keyscope-group" {
		t.Errorf("GroupID = %q", q.config.GroupID)
	}
	if q.config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d", q.config.MaxAttempts)
	}
}

func TestNewKafkaQueue_NoBrokers(t *testing.T) {
	if _, err := newKafkaQueue(KafkaConfig{}); err == nil {
		t.Fatal("Expected error when no brokers configured")
	}
}

func TestKafkaQueue_WriterReuse(t *testing.T) {
	q, _ := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	defer func() { _ = q.Close() }()

	if q.writer("a") != q.writer("a") {
		t.Error("writer should be cached per topic")
	}
	if q.writer("a") == q.writer("b") {
		t.Error("topics should not share writers")
	}
}

func TestKafkaQueue_UnsubscribeUnknown(t *testing.T) {
	q, _ := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	defer func() { _ = q.Close() }()

	if err := q.Unsubscribe("nothing"); err == nil {
		t.Error("expected error for unknown topic")
	}
}

func TestKafkaQueue_PublishSubscribe(t *testing.T) {
	if !isKafkaAvailable() {
		t.Skip("Kafka not available, set KAFKA_TEST=1 to run")
	}

	q, err := newKafkaQueue(KafkaConfig{
		Brokers: getKafkaBrokers(),
		GroupID: fmt.Sprintf("keyscope-test-%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("Failed to create Kafka queue: %v", err)
	}
	defer func() { _ = q.Close() }()

	topic := fmt.Sprintf("keyscope-test-%d", time.Now().UnixNano())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := q.Publish(ctx, topic, []byte("hello")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	received := make(chan string, 1)
	if err := q.Subscribe(topic, func(data []byte) error {
		received <- string(data)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case got := <-received:
		if got != "hello" {
			t.Errorf("got %q", got)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}
