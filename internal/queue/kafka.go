// Package queue carries the handoff to the external tree builder over Kafka:
// a fire-and-forget task producer and a completion consumer that feeds the
// worker's reports back into the lifecycle.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"corpcheck/internal/lifecycle/models"
)

// KafkaTaskQueue publishes tree-build tasks, keyed by the record id so
// retries for one package stay ordered.
type KafkaTaskQueue struct {
	client *kgo.Client
	topic  string
}

// NewKafkaTaskQueue connects a producer to the task topic.
func NewKafkaTaskQueue(brokers []string, topic string) (*KafkaTaskQueue, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.Lz4Compression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &KafkaTaskQueue{client: client, topic: topic}, nil
}

func (q *KafkaTaskQueue) Enqueue(ctx context.Context, task models.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	record := &kgo.Record{
		Topic: q.topic,
		Key:   []byte(task.CID.String()),
		Value: payload,
	}
	if err := q.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce task: %w", err)
	}
	return nil
}

// Close flushes and tears down the producer.
func (q *KafkaTaskQueue) Close() {
	q.client.Close()
}

// Completion is the worker's report for one tree build.
type Completion struct {
	CID     uuid.UUID           `json:"cid"`
	Data    *models.PackageData `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
}

// Completer consumes worker completions. Satisfied by lifecycle.Service.
type Completer interface {
	Complete(ctx context.Context, cid uuid.UUID, data *models.PackageData, workerErr string) error
}

// CompletionConsumer reads worker completions off Kafka and applies them.
type CompletionConsumer struct {
	client    *kgo.Client
	completer Completer
	logger    *slog.Logger
}

// NewCompletionConsumer connects a consumer group to the completion topic.
func NewCompletionConsumer(brokers []string, topic, group string, completer Completer, logger *slog.Logger) (*CompletionConsumer, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &CompletionConsumer{client: client, completer: completer, logger: logger}, nil
}

// Run polls until the context is cancelled. Undecodable records are logged
// and skipped; completion failures are logged and left for the worker's
// redelivery.
func (c *CompletionConsumer) Run(ctx context.Context) error {
	defer c.client.Close()
	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fetchErr := range errs {
				if errors.Is(fetchErr.Err, context.Canceled) {
					return ctx.Err()
				}
				c.logger.ErrorContext(ctx, "completion fetch failed",
					"topic", fetchErr.Topic,
					"error", fetchErr.Err,
				)
			}
		}
		fetches.EachRecord(func(record *kgo.Record) {
			c.handle(ctx, record)
		})
	}
}

func (c *CompletionConsumer) handle(ctx context.Context, record *kgo.Record) {
	var completion Completion
	if err := json.Unmarshal(record.Value, &completion); err != nil {
		c.logger.ErrorContext(ctx, "skipping undecodable completion", "error", err)
		return
	}
	workerErr := completion.Error
	if workerErr == "" && completion.Data == nil && completion.Message != "" {
		workerErr = completion.Message
	}
	if err := c.completer.Complete(ctx, completion.CID, completion.Data, workerErr); err != nil {
		c.logger.ErrorContext(ctx, "completion handling failed",
			"cid", completion.CID,
			"error", err,
		)
	}
}
