package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PublishRequest carries one rendered result document.
type PublishRequest struct {
	PatientID   uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	LabName     string // display name of the sending lab, may be empty
	Content     []byte
	MimeType    string // defaults to application/pdf
	ReceivedAt  time.Time
}

// Publisher writes result documents under root/<patient-id>/ and catalogs
// them. Filenames are {order}_RESULT_{yyyy}{day-of-year}, with _1, _2, ...
// appended until the name is free, so repeated deliveries on the same day
// never overwrite an earlier file.
type Publisher struct {
	root string
	repo Repository
	log  zerolog.Logger
}

func NewPublisher(root string, repo Repository, log zerolog.Logger) *Publisher {
	return &Publisher{root: root, repo: repo, log: log}
}

func extensionFor(mime string) string {
	switch mime {
	case "application/pdf":
		return ".pdf"
	case "text/html":
		return ".html"
	default:
		return ".txt"
	}
}

func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (*Document, error) {
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("document content is empty")
	}
	mime := req.MimeType
	if mime == "" {
		mime = "application/pdf"
	}
	when := req.ReceivedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}

	dir := filepath.Join(p.root, req.PatientID.String())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create patient document dir: %w", err)
	}

	base := fmt.Sprintf("%s_RESULT_%04d%03d", req.OrderNumber, when.Year(), when.YearDay())
	ext := extensionFor(mime)
	name := base + ext
	for n := 1; ; n++ {
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("probe document name %s: %w", name, err)
		}
		name = fmt.Sprintf("%s_%d%s", base, n, ext)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, req.Content, 0o640); err != nil {
		return nil, fmt.Errorf("write document %s: %w", path, err)
	}

	sum := sha256.Sum256(req.Content)
	category := req.LabName
	if category == "" {
		category = DefaultCategory
	}

	orderID := req.OrderID
	doc := &Document{
		PatientID: req.PatientID,
		OrderID:   &orderID,
		Category:  category,
		Name:      name,
		Path:      path,
		MimeType:  mime,
		Size:      int64(len(req.Content)),
		Hash:      hex.EncodeToString(sum[:]),
	}
	if err := p.repo.Create(ctx, doc); err != nil {
		// Keep the catalog consistent with the filesystem.
		if rmErr := os.Remove(path); rmErr != nil {
			p.log.Warn().Err(rmErr).Str("path", path).Msg("could not remove document after catalog failure")
		}
		return nil, fmt.Errorf("catalog document %s: %w", name, err)
	}

	p.log.Info().
		Str("order_number", req.OrderNumber).
		Str("document", name).
		Str("category", category).
		Msg("result document published")
	return doc, nil
}
