package recon

import (
	"context"

	"github.com/rs/zerolog"
)

// AckCollector funnels per-message verdicts to the source, honoring its
// acknowledgment mode. Delivery failures are logged and swallowed: an ack
// that cannot be delivered must never undo completed merges.
type AckCollector struct {
	src     Source
	batchID string
	pending []Ack
	log     zerolog.Logger
}

func NewAckCollector(src Source, batchID string, log zerolog.Logger) *AckCollector {
	return &AckCollector{src: src, batchID: batchID, log: log}
}

func (c *AckCollector) Record(ctx context.Context, ack Ack) {
	if c.src.BatchAck() {
		c.pending = append(c.pending, ack)
		return
	}
	if err := c.src.AcknowledgeOne(ctx, ack); err != nil {
		c.log.Warn().Err(err).Str("message_id", ack.MessageID).Msg("acknowledgment delivery failed")
	}
}

// Flush delivers buffered acknowledgments. Called at the end of every run,
// including aborted ones, so the source learns about the messages that did
// complete.
func (c *AckCollector) Flush(ctx context.Context) {
	if !c.src.BatchAck() || len(c.pending) == 0 {
		return
	}
	if err := c.src.Acknowledge(ctx, c.batchID, c.pending); err != nil {
		c.log.Warn().Err(err).Str("batch_id", c.batchID).Int("acks", len(c.pending)).
			Msg("batch acknowledgment delivery failed")
	}
	c.pending = nil
}
