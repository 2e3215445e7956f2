package recon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ack is the engine's verdict on one message, returned to the source.
type Ack struct {
	MessageID string `json:"message_id"`
	Accepted  bool   `json:"accepted"`
	Detail    string `json:"detail,omitempty"`
}

// Source supplies result messages and receives acknowledgments. A source
// declares via BatchAck whether it wants one acknowledgment per batch or
// one per message.
type Source interface {
	// FetchBatch returns up to max messages. A non-empty lab restricts the
	// batch to that lab processor. from and thru are passed to the source
	// verbatim; their interpretation is the source's business.
	FetchBatch(ctx context.Context, max int, lab, from, thru string) (batchID string, msgs []*InboundMessage, err error)
	// BatchAck reports whether acknowledgments are delivered in one call
	// at the end of the batch.
	BatchAck() bool
	Acknowledge(ctx context.Context, batchID string, acks []Ack) error
	AcknowledgeOne(ctx context.Context, ack Ack) error
}

// FileSource reads one JSON-encoded message per file from an inbox
// directory. Acknowledged files move to archive/ or rejected/ so a rerun
// never sees them again. Acks are immediate, one per message.
type FileSource struct {
	dir string
	log zerolog.Logger
}

func NewFileSource(dir string, log zerolog.Logger) *FileSource {
	return &FileSource{dir: dir, log: log}
}

func (s *FileSource) FetchBatch(_ context.Context, max int, lab, _, _ string) (string, []*InboundMessage, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", nil, fmt.Errorf("read inbox %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var msgs []*InboundMessage
	for _, name := range names {
		if max > 0 && len(msgs) >= max {
			break
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return "", nil, fmt.Errorf("read message %s: %w", name, err)
		}
		var msg InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("unparsable message file, rejecting")
			if err := s.moveTo(name, "rejected"); err != nil {
				return "", nil, err
			}
			continue
		}
		// Out-of-scope labs stay in the inbox for their own run.
		if lab != "" && msg.LabID != lab {
			continue
		}
		// The filename is the ack handle.
		msg.MessageID = name
		msg.Raw = raw
		msgs = append(msgs, &msg)
	}
	return uuid.NewString(), msgs, nil
}

func (s *FileSource) BatchAck() bool { return false }

func (s *FileSource) Acknowledge(ctx context.Context, _ string, acks []Ack) error {
	for _, ack := range acks {
		if err := s.AcknowledgeOne(ctx, ack); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileSource) AcknowledgeOne(_ context.Context, ack Ack) error {
	sub := "archive"
	if !ack.Accepted {
		sub = "rejected"
	}
	return s.moveTo(ack.MessageID, sub)
}

func (s *FileSource) moveTo(name, sub string) error {
	dir := filepath.Join(s.dir, sub)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s dir: %w", sub, err)
	}
	if err := os.Rename(filepath.Join(s.dir, name), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("move %s to %s: %w", name, sub, err)
	}
	return nil
}

// MemorySource holds a fixed batch in memory. Used in tests and by the
// admin trigger endpoint when a payload is posted inline. Acks are
// collected for the whole batch.
type MemorySource struct {
	mu      sync.Mutex
	batchID string
	msgs    []*InboundMessage
	fetched bool

	Acks []Ack
}

func NewMemorySource(msgs ...*InboundMessage) *MemorySource {
	return &MemorySource{batchID: uuid.NewString(), msgs: msgs}
}

func (s *MemorySource) FetchBatch(_ context.Context, max int, lab, _, _ string) (string, []*InboundMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetched {
		return s.batchID, nil, nil
	}
	s.fetched = true
	var msgs []*InboundMessage
	for _, m := range s.msgs {
		if lab != "" && m.LabID != lab {
			continue
		}
		if max > 0 && len(msgs) >= max {
			break
		}
		msgs = append(msgs, m)
	}
	return s.batchID, msgs, nil
}

func (s *MemorySource) BatchAck() bool { return true }

func (s *MemorySource) Acknowledge(_ context.Context, batchID string, acks []Ack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if batchID != s.batchID {
		return fmt.Errorf("unknown batch %s", batchID)
	}
	s.Acks = append(s.Acks, acks...)
	return nil
}

func (s *MemorySource) AcknowledgeOne(_ context.Context, ack Ack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Acks = append(s.Acks, ack)
	return nil
}
