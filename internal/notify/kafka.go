package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter abstrait kafka.Writer pour les tests
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publie les RunEvent sur un topic Kafka, clé = date logique
// (un même jour va toujours sur la même partition).
type KafkaNotifier struct {
	writer  messageWriter
	closer  func() error
	timeout time.Duration
}

// NewKafkaNotifier crée un publisher; bootstrap est une liste de brokers séparés par des virgules
func NewKafkaNotifier(bootstrap, topic string) *KafkaNotifier {
	var brokers []string
	for _, a := range strings.Split(bootstrap, ",") {
		if a = strings.TrimSpace(a); a != "" {
			brokers = append(brokers, a)
		}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &KafkaNotifier{writer: w, closer: w.Close, timeout: 10 * time.Second}
}

// newKafkaNotifierWith injecte un writer (tests)
func newKafkaNotifierWith(w messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w, timeout: time.Second}
}

// Notify sérialise l'événement en JSON et le publie
func (k *KafkaNotifier) Notify(ctx context.Context, event RunEvent) error {
	b, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	key := event.LogicalDate
	if key == "" {
		key = event.RunID
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b}); err != nil {
		return fmt.Errorf("publish run event: %w", err)
	}
	return nil
}

// Close libère le writer Kafka
func (k *KafkaNotifier) Close() error {
	if k.closer == nil {
		return nil
	}
	return k.closer()
}
