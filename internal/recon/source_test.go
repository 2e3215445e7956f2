package recon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeInboxFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o640); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFileSourceFetchAndAck(t *testing.T) {
	dir := t.TempDir()
	writeInboxFile(t, dir, "002.json", `{"lab_id":"quest","order_number":"ORD-2","patient":{"mrn":"2"}}`)
	writeInboxFile(t, dir, "001.json", `{"lab_id":"quest","order_number":"ORD-1","patient":{"mrn":"1"}}`)
	writeInboxFile(t, dir, "notes.txt", "ignored")

	src := NewFileSource(dir, zerolog.Nop())
	batchID, msgs, err := src.FetchBatch(context.Background(), 0, "", "", "")
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if batchID == "" {
		t.Error("batch id must be assigned")
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].MessageID != "001.json" || msgs[1].MessageID != "002.json" {
		t.Error("messages must be ordered by filename and keyed by it")
	}
	if src.BatchAck() {
		t.Error("file source acks one message at a time")
	}

	if err := src.AcknowledgeOne(context.Background(), Ack{MessageID: "001.json", Accepted: true}); err != nil {
		t.Fatalf("AcknowledgeOne: %v", err)
	}
	if err := src.AcknowledgeOne(context.Background(), Ack{MessageID: "002.json", Accepted: false, Detail: "invalid"}); err != nil {
		t.Fatalf("AcknowledgeOne: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "archive", "001.json")); err != nil {
		t.Error("accepted message must move to archive/")
	}
	if _, err := os.Stat(filepath.Join(dir, "rejected", "002.json")); err != nil {
		t.Error("rejected message must move to rejected/")
	}
}

func TestFileSourceRejectsUnparsableFiles(t *testing.T) {
	dir := t.TempDir()
	writeInboxFile(t, dir, "bad.json", "{not json")
	writeInboxFile(t, dir, "good.json", `{"lab_id":"quest","order_number":"ORD-1","patient":{"mrn":"1"}}`)

	src := NewFileSource(dir, zerolog.Nop())
	_, msgs, err := src.FetchBatch(context.Background(), 0, "", "", "")
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(msgs) != 1 || msgs[0].MessageID != "good.json" {
		t.Fatalf("messages = %d, want only the parsable one", len(msgs))
	}
	if _, err := os.Stat(filepath.Join(dir, "rejected", "bad.json")); err != nil {
		t.Error("unparsable file must move to rejected/")
	}
}

func TestFileSourceHonorsMax(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "c.json"} {
		writeInboxFile(t, dir, name, `{"lab_id":"quest","order_number":"ORD-1","patient":{"mrn":"1"}}`)
	}

	src := NewFileSource(dir, zerolog.Nop())
	_, msgs, err := src.FetchBatch(context.Background(), 2, "", "", "")
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("messages = %d, want max 2", len(msgs))
	}
}

func TestFileSourceScopesToLab(t *testing.T) {
	dir := t.TempDir()
	writeInboxFile(t, dir, "q1.json", `{"lab_id":"quest","order_number":"ORD-1","patient":{"mrn":"1"}}`)
	writeInboxFile(t, dir, "l1.json", `{"lab_id":"labcorp","order_number":"ORD-2","patient":{"mrn":"2"}}`)

	src := NewFileSource(dir, zerolog.Nop())
	_, msgs, err := src.FetchBatch(context.Background(), 0, "quest", "", "")
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(msgs) != 1 || msgs[0].LabID != "quest" {
		t.Fatalf("messages = %d, want only the requested lab's", len(msgs))
	}
	if _, err := os.Stat(filepath.Join(dir, "l1.json")); err != nil {
		t.Error("out-of-scope message must stay in the inbox")
	}
}

func TestMemorySourceSingleFetch(t *testing.T) {
	src := NewMemorySource(validMessage())

	_, msgs, err := src.FetchBatch(context.Background(), 0, "", "", "")
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}

	_, msgs, err = src.FetchBatch(context.Background(), 0, "", "", "")
	if err != nil || len(msgs) != 0 {
		t.Error("second fetch must return an empty batch")
	}
}
