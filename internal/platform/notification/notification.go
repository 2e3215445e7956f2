// Package notification delivers result-arrival alerts to clinicians over
// a pluggable messaging channel. Delivery is fire-and-forget: failures
// are logged by the caller and never abort result processing.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Channel is the messaging backend contract (portal inbox, pager bridge).
type Channel interface {
	Notify(ctx context.Context, patientID uuid.UUID, recipient, body string) error
}

// ---------------------------------------------------------------------------
// Template Engine
// ---------------------------------------------------------------------------

// Template defines a reusable notification body.
type Template struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:   "results-received",
			Name: "Lab Results Received",
			Body: "New lab results for {{patient_name}} from {{lab_name}} are ready for review.",
		},
		{
			ID:   "results-abnormal",
			Name: "Abnormal Lab Results",
			Body: "Lab results for {{patient_name}} from {{lab_name}} contain {{abnormal_count}} abnormal value(s) and require review.",
		},
		{
			ID:   "results-cancelled",
			Name: "Lab Order Cancelled",
			Body: "The laboratory cancelled one or more tests for {{patient_name}} ({{lab_name}}).",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using
// the supplied data map. Keys present in the template but absent from data
// are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (string, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %q not found", templateID)
	}

	body := t.Body
	for k, v := range data {
		body = strings.ReplaceAll(body, "{{"+k+"}}", v)
	}
	return body, nil
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher renders a template and hands the message to the channel.
type Dispatcher struct {
	channel   Channel
	templates *TemplateEngine
	log       zerolog.Logger
}

func NewDispatcher(ch Channel, tpl *TemplateEngine, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{channel: ch, templates: tpl, log: log}
}

// ResultsReady notifies the recipient that results arrived for a patient.
// Chooses the abnormal-results template when abnormalCount > 0. Errors are
// logged, never returned.
func (d *Dispatcher) ResultsReady(ctx context.Context, patientID uuid.UUID, recipient, patientName, labName string, abnormalCount int) {
	if recipient == "" {
		return
	}

	templateID := "results-received"
	data := map[string]string{
		"patient_name": patientName,
		"lab_name":     labName,
	}
	if abnormalCount > 0 {
		templateID = "results-abnormal"
		data["abnormal_count"] = fmt.Sprintf("%d", abnormalCount)
	}

	body, err := d.templates.Render(templateID, data)
	if err != nil {
		d.log.Error().Err(err).Str("template", templateID).Msg("render notification")
		return
	}

	if err := d.channel.Notify(ctx, patientID, recipient, body); err != nil {
		d.log.Warn().Err(err).
			Str("recipient", recipient).
			Str("patient_id", patientID.String()).
			Msg("notification delivery failed")
	}
}

// ---------------------------------------------------------------------------
// Channels
// ---------------------------------------------------------------------------

// LogChannel writes notifications to the logger. Used when no messaging
// backend is configured.
type LogChannel struct {
	Log zerolog.Logger
}

func (l *LogChannel) Notify(_ context.Context, patientID uuid.UUID, recipient, body string) error {
	l.Log.Info().
		Str("patient_id", patientID.String()).
		Str("recipient", recipient).
		Str("body", body).
		Msg("notification")
	return nil
}

// NotifyCall records a single call to Notify.
type NotifyCall struct {
	PatientID uuid.UUID
	Recipient string
	Body      string
}

// MockChannel is a test double for Channel.
type MockChannel struct {
	mu         sync.Mutex
	calls      []NotifyCall
	ShouldFail bool
	FailError  string
}

// Notify records the call and optionally returns an error.
func (m *MockChannel) Notify(_ context.Context, patientID uuid.UUID, recipient, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, NotifyCall{PatientID: patientID, Recipient: recipient, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockChannel) Calls() []NotifyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotifyCall, len(m.calls))
	copy(out, m.calls)
	return out
}
