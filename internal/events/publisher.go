package events

import (
	"context"
	"strconv"
	"sync"
	"time"

	"lungrisk/internal/domain/prediction"
	"lungrisk/pkg/logger"
)

// Sink delivers encoded events. *kafka.Producer implements it.
type Sink interface {
	Publish(ctx context.Context, topic string, key string, event interface{}) error
}

type envelope struct {
	key   string
	event interface{}
}

// Publisher forwards prediction events to a Sink from a background goroutine
// so request handling never waits on the broker. Events are dropped when the
// buffer is full.
type Publisher struct {
	sink    Sink
	topic   string
	source  string
	timeout time.Duration
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan envelope
	wg     sync.WaitGroup
}

// NewPublisher creates a publisher and starts its delivery loop
func NewPublisher(sink Sink, topic, source string, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{
		sink:    sink,
		topic:   topic,
		source:  source,
		timeout: 5 * time.Second,
		log:     logger.Get().With("component", "event_publisher"),
		queue:   make(chan envelope, buffer),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// PredictionLogged enqueues a prediction.logged event keyed by model name
func (p *Publisher) PredictionLogged(ctx context.Context, rec *prediction.LogRecord) error {
	ev := NewPredictionLoggedEvent(p.source, rec)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil
	}

	select {
	case p.queue <- envelope{key: rec.ModelName, event: ev}:
		return nil
	default:
		p.log.Warnw("Event buffer full, dropping event", "type", ev.Type, "log_id", strconv.FormatInt(rec.ID, 10))
		return nil
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for env := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.sink.Publish(ctx, p.topic, env.key, env.event); err != nil {
			p.log.Warnw("Failed to publish event", "topic", p.topic, "error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to be delivered
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}
