package poller

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageReader matches the kafka.Reader surface the poller uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type clearFunc func(ctx context.Context, sessionID string)

// Poller consumes checkout-completed events and empties the corresponding
// cart. A checkout is the only external trigger that clears a cart outside
// the HTTP surface.
type Poller struct {
	reader messageReader
	clear  clearFunc
	logger *zap.Logger
}

func New(brokers []string, groupID string, clear clearFunc, logger *zap.Logger) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-completed",
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{reader: reader, clear: clear, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.consumeOne(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("error closing kafka reader", zap.Error(err))
	}
}

// consumeOne handles a single message. Malformed payloads are logged and
// skipped; the consumer never stops on bad input.
func (p *Poller) consumeOne(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("error reading checkout message", zap.Error(err))
		}
		return
	}

	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		p.logger.Warn("error parsing checkout message", zap.Error(err))
		return
	}
	if payload.SessionID == "" {
		p.logger.Warn("checkout message missing session_id")
		return
	}

	p.clear(ctx, payload.SessionID)
	p.logger.Info("cart cleared after checkout", zap.String("session_id", payload.SessionID))
}
