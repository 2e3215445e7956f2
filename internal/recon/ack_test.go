package recon

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type recordingSource struct {
	mu       sync.Mutex
	batchAck bool
	failAck  bool
	single   []Ack
	batches  map[string][]Ack
}

func newRecordingSource(batchAck bool) *recordingSource {
	return &recordingSource{batchAck: batchAck, batches: make(map[string][]Ack)}
}

func (s *recordingSource) FetchBatch(context.Context, int, string, string, string) (string, []*InboundMessage, error) {
	return "batch-1", nil, nil
}

func (s *recordingSource) BatchAck() bool { return s.batchAck }

func (s *recordingSource) Acknowledge(_ context.Context, batchID string, acks []Ack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAck {
		return errors.New("endpoint unreachable")
	}
	s.batches[batchID] = append(s.batches[batchID], acks...)
	return nil
}

func (s *recordingSource) AcknowledgeOne(_ context.Context, ack Ack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAck {
		return errors.New("endpoint unreachable")
	}
	s.single = append(s.single, ack)
	return nil
}

func TestAckCollectorImmediateMode(t *testing.T) {
	src := newRecordingSource(false)
	c := NewAckCollector(src, "batch-1", zerolog.Nop())

	c.Record(context.Background(), Ack{MessageID: "m1", Accepted: true})
	c.Record(context.Background(), Ack{MessageID: "m2", Accepted: false, Detail: "bad"})

	if len(src.single) != 2 {
		t.Fatalf("immediate acks = %d, want 2 before Flush", len(src.single))
	}
	c.Flush(context.Background())
	if len(src.batches["batch-1"]) != 0 {
		t.Error("immediate mode must not deliver a batch ack")
	}
}

func TestAckCollectorBatchMode(t *testing.T) {
	src := newRecordingSource(true)
	c := NewAckCollector(src, "batch-1", zerolog.Nop())

	c.Record(context.Background(), Ack{MessageID: "m1", Accepted: true})
	c.Record(context.Background(), Ack{MessageID: "m2", Accepted: true})
	if len(src.batches["batch-1"]) != 0 {
		t.Fatal("batch mode must buffer until Flush")
	}

	c.Flush(context.Background())
	if got := len(src.batches["batch-1"]); got != 2 {
		t.Fatalf("batch acks = %d, want 2", got)
	}

	// A second flush must not redeliver.
	c.Flush(context.Background())
	if got := len(src.batches["batch-1"]); got != 2 {
		t.Errorf("batch acks after reflush = %d, want 2", got)
	}
}

func TestAckCollectorSwallowsDeliveryFailure(t *testing.T) {
	src := newRecordingSource(true)
	src.failAck = true
	c := NewAckCollector(src, "batch-1", zerolog.Nop())

	c.Record(context.Background(), Ack{MessageID: "m1", Accepted: true})
	c.Flush(context.Background()) // must not panic or error

	src = newRecordingSource(false)
	src.failAck = true
	c = NewAckCollector(src, "batch-1", zerolog.Nop())
	c.Record(context.Background(), Ack{MessageID: "m1", Accepted: true})
}
