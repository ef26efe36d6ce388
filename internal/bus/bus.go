package bus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/redseed-project/redseed/internal/core"
)

// EventBus wraps NATS JetStream for publishing generation reports and
// exploit records to external consumers.
type EventBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	ns     *server.Server
	logger zerolog.Logger
	mu     sync.RWMutex
	subs   []*nats.Subscription

	metrics *Metrics
}

// Metrics tracks event bus performance counters.
type Metrics struct {
	mu                sync.Mutex
	ReportsPublished  int64
	ExploitsPublished int64
	PublishFailed     int64
	MessagesAcked     int64
	MessagesNaked     int64
}

// NewEventBus connects to NATS. If cfg.Embedded is true, it starts an
// embedded NATS server first.
func NewEventBus(cfg core.BusConfig, logger zerolog.Logger) (*EventBus, error) {
	bus := &EventBus{
		logger:  logger.With().Str("component", "event_bus").Logger(),
		subs:    make([]*nats.Subscription, 0),
		metrics: &Metrics{},
	}

	if cfg.Embedded {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating NATS data dir: %w", err)
		}

		opts := &server.Options{
			Host:      "127.0.0.1",
			Port:      cfg.Port,
			JetStream: true,
			StoreDir:  cfg.DataDir,
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := server.NewServer(opts)
		if err != nil {
			return nil, fmt.Errorf("creating embedded NATS server: %w", err)
		}

		ns.Start()

		if !ns.ReadyForConnections(10 * time.Second) {
			return nil, fmt.Errorf("embedded NATS server failed to start within timeout")
		}

		bus.ns = ns
		bus.logger.Info().Int("port", cfg.Port).Msg("embedded NATS server started")
	}

	url := cfg.URL
	if cfg.Embedded {
		url = fmt.Sprintf("nats://127.0.0.1:%d", cfg.Port)
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				bus.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			bus.logger.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	bus.nc = nc

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}
	bus.js = js

	// Create or update the generation reports stream. AddStream returns the
	// existing stream if config matches; if the stream exists with a
	// different config (e.g., after a version upgrade), we update it.
	runsStreamCfg := &nats.StreamConfig{
		Name:      "EVOLUTION_RUNS",
		Subjects:  []string{"evo.generations.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour * 30, // 30 days retention
		MaxBytes:  512 * 1024 * 1024,   // 512MB max
		Storage:   nats.FileStorage,
		Discard:   nats.DiscardOld,
	}
	_, err = js.AddStream(runsStreamCfg)
	if err != nil {
		if _, updateErr := js.UpdateStream(runsStreamCfg); updateErr != nil {
			return nil, fmt.Errorf("creating/updating runs stream: %w (original: %v)", updateErr, err)
		}
	}

	// Create or update the exploit stream.
	exploitsStreamCfg := &nats.StreamConfig{
		Name:      "EVOLUTION_EXPLOITS",
		Subjects:  []string{"evo.exploits.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour * 7, // 7 days retention
		MaxBytes:  1024 * 1024 * 1024, // 1GB max
		Storage:   nats.FileStorage,
		Discard:   nats.DiscardOld,
	}
	_, err = js.AddStream(exploitsStreamCfg)
	if err != nil {
		if _, updateErr := js.UpdateStream(exploitsStreamCfg); updateErr != nil {
			return nil, fmt.Errorf("creating/updating exploits stream: %w (original: %v)", updateErr, err)
		}
	}

	bus.logger.Info().Str("url", url).Msg("connected to NATS JetStream")
	return bus, nil
}

// PublishReport publishes a generation report to the runs stream.
func (b *EventBus) PublishReport(report *core.GenerationReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	subject := fmt.Sprintf("evo.generations.%d", report.Generation)
	_, err = b.js.Publish(subject, data)
	if err != nil {
		b.metrics.mu.Lock()
		b.metrics.PublishFailed++
		b.metrics.mu.Unlock()
		return fmt.Errorf("publishing report to %s: %w", subject, err)
	}

	b.metrics.mu.Lock()
	b.metrics.ReportsPublished++
	b.metrics.mu.Unlock()

	b.logger.Debug().
		Str("report_id", report.ID).
		Str("subject", subject).
		Float64("fitness", report.FitnessScore).
		Msg("report published")

	return nil
}

// PublishExploit publishes a single exploit record to the exploit stream.
// Blocked and bypassing attempts land on separate subject branches so
// consumers can filter on outcome.
func (b *EventBus) PublishExploit(record *core.ExploitRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling exploit: %w", err)
	}

	outcome := "bypassed"
	if record.Blocked {
		outcome = "blocked"
	}
	subject := fmt.Sprintf("evo.exploits.%s.%s", record.Category, outcome)
	_, err = b.js.Publish(subject, data)
	if err != nil {
		b.metrics.mu.Lock()
		b.metrics.PublishFailed++
		b.metrics.mu.Unlock()
		return fmt.Errorf("publishing exploit to %s: %w", subject, err)
	}

	b.metrics.mu.Lock()
	b.metrics.ExploitsPublished++
	b.metrics.mu.Unlock()

	return nil
}

// Subscribe creates a durable subscription to a subject pattern.
func (b *EventBus) Subscribe(subject, durableName string, handler func(msg *nats.Msg)) error {
	opts := []nats.SubOpt{nats.DeliverNew(), nats.AckExplicit()}
	if durableName != "" {
		opts = append(opts, nats.Durable(durableName))
	}
	sub, err := b.js.Subscribe(subject, handler, opts...)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", subject, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	b.logger.Debug().Str("subject", subject).Str("durable", durableName).Msg("subscribed")
	return nil
}

// SubscribeToReports subscribes to all generation reports with a durable
// consumer.
func (b *EventBus) SubscribeToReports(handler func(report *core.GenerationReport)) error {
	return b.Subscribe("evo.generations.>", "redseed-reports", func(msg *nats.Msg) {
		var report core.GenerationReport
		if err := json.Unmarshal(msg.Data, &report); err != nil {
			b.logger.Error().Err(err).Msg("failed to unmarshal report")
			_ = msg.Nak()
			b.metrics.mu.Lock()
			b.metrics.MessagesNaked++
			b.metrics.mu.Unlock()
			return
		}
		handler(&report)
		_ = msg.Ack()
		b.metrics.mu.Lock()
		b.metrics.MessagesAcked++
		b.metrics.mu.Unlock()
	})
}

// Close shuts down the event bus.
func (b *EventBus) Close() error {
	b.mu.Lock()
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
	b.mu.Unlock()

	if b.nc != nil {
		b.nc.Close()
	}

	if b.ns != nil {
		b.ns.Shutdown()
		b.ns.WaitForShutdown()
		b.logger.Info().Msg("embedded NATS server stopped")
	}

	return nil
}

// IsConnected returns true if the NATS connection is active.
func (b *EventBus) IsConnected() bool {
	return b.nc != nil && b.nc.IsConnected()
}

// GetMetrics returns a snapshot of bus metrics.
func (b *EventBus) GetMetrics() map[string]int64 {
	b.metrics.mu.Lock()
	defer b.metrics.mu.Unlock()
	return map[string]int64{
		"reports_published":  b.metrics.ReportsPublished,
		"exploits_published": b.metrics.ExploitsPublished,
		"publish_failed":     b.metrics.PublishFailed,
		"messages_acked":     b.metrics.MessagesAcked,
		"messages_naked":     b.metrics.MessagesNaked,
	}
}
