package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

const (
	defaultQueueSize    = 64
	defaultWriteTimeout = 10 * time.Second
)

var (
	ErrQueueFull = errors.New("publish queue full")
	ErrClosed    = errors.New("publisher closed")
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes every snapshot as a JSON message keyed by site id.
// Publish only enqueues a batch; a background goroutine does the network
// write so a slow broker never holds up a tick.
type KafkaPublisher struct {
	w            messageWriter
	log          *zap.Logger
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan []kafka.Message
	done   chan struct{}
}

// NewKafkaWriter builds a writer that routes all messages of a site to the
// same partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(w messageWriter, log *zap.Logger) *KafkaPublisher {
	return newKafkaPublisher(w, log, defaultQueueSize)
}

func newKafkaPublisher(w messageWriter, log *zap.Logger, queueSize int) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	p := &KafkaPublisher{
		w:            w,
		log:          log,
		writeTimeout: defaultWriteTimeout,
		queue:        make(chan []kafka.Message, queueSize),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish implements solar.Publisher. The batch is dropped with ErrQueueFull
// when the writer has fallen too far behind.
func (p *KafkaPublisher) Publish(_ context.Context, snapshots []solar.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(snapshots))
	for _, s := range snapshots {
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal snapshot for %s: %w", s.SiteID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(s.SiteID), Value: b, Time: s.Timestamp})
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- msgs:
		return nil
	default:
		return fmt.Errorf("%w: dropped %d snapshots", ErrQueueFull, len(msgs))
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for msgs := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
		err := p.w.WriteMessages(ctx, msgs...)
		cancel()
		if err != nil {
			p.log.Warn("kafka write failed", zap.Int("count", len(msgs)), zap.Error(err))
			continue
		}
		p.log.Debug("snapshots published", zap.Int("count", len(msgs)))
	}
}

// Close writes out queued batches and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	<-p.done
	return p.w.Close()
}
