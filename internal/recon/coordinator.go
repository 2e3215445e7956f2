package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labrecon/labrecon/internal/domain/audit"
	"github.com/labrecon/labrecon/internal/domain/documents"
	"github.com/labrecon/labrecon/internal/domain/facility"
	"github.com/labrecon/labrecon/internal/domain/order"
	"github.com/labrecon/labrecon/internal/domain/patient"
	"github.com/labrecon/labrecon/internal/platform/notification"
)

// Outcome classifies how one message ended up.
type Outcome int

const (
	OutcomeMerged Outcome = iota
	OutcomeOrphaned
	OutcomeSkipped
	OutcomeAborted
)

// RunContext carries the per-run parameters an operator chose. Lab scopes
// the run to one lab processor; empty means every lab the source serves.
type RunContext struct {
	Operator        string
	DefaultFacility string
	Lab             string
	From            string
	Thru            string
	MaxMessages     int
}

// Summary is the outcome of one batch run.
type Summary struct {
	BatchID   string `json:"batch_id"`
	Fetched   int    `json:"fetched"`
	Merged    int    `json:"merged"`
	Orphans   int    `json:"orphans"`
	Skipped   int    `json:"skipped"`
	Aborted   int    `json:"aborted"`
	Documents int    `json:"documents"`
	Results   int    `json:"results"`
	Abnormal  int    `json:"abnormal"`
}

// Coordinator drives a batch run: fetch, then per message resolve, merge,
// publish, notify, audit and acknowledge. Messages are processed strictly
// in order; a persistence failure aborts the rest of the batch so nothing
// is acknowledged that was not durably stored.
type Coordinator struct {
	patients      *patient.Resolver
	patientStore  patient.Repository
	orderResolver *order.Resolver
	factory       *order.PlaceholderFactory
	merger        *order.Merger
	status        *order.StatusManager
	facilities    *facility.Service
	publisher     *documents.Publisher
	notifier      *notification.Dispatcher
	trail         audit.Repository
	log           zerolog.Logger
}

// Deps bundles the coordinator's collaborators.
type Deps struct {
	Patients      *patient.Resolver
	PatientStore  patient.Repository
	OrderResolver *order.Resolver
	Factory       *order.PlaceholderFactory
	Merger        *order.Merger
	Status        *order.StatusManager
	Facilities    *facility.Service
	Publisher     *documents.Publisher
	Notifier      *notification.Dispatcher
	Trail         audit.Repository
	Log           zerolog.Logger
}

func NewCoordinator(d Deps) *Coordinator {
	return &Coordinator{
		patients:      d.Patients,
		patientStore:  d.PatientStore,
		orderResolver: d.OrderResolver,
		factory:       d.Factory,
		merger:        d.Merger,
		status:        d.Status,
		facilities:    d.Facilities,
		publisher:     d.Publisher,
		notifier:      d.Notifier,
		trail:         d.Trail,
		log:           d.Log,
	}
}

// Run processes one batch from the source and returns its summary. The
// returned error is non-nil only when the batch could not be fetched or
// was aborted by a persistence failure; per-message validation problems
// are counted in the summary, not returned.
func (c *Coordinator) Run(ctx context.Context, src Source, rc RunContext) (*Summary, error) {
	batchID, msgs, err := src.FetchBatch(ctx, rc.MaxMessages, rc.Lab, rc.From, rc.Thru)
	if err != nil {
		return nil, fmt.Errorf("fetch batch: %w", err)
	}
	if batchID == "" {
		batchID = uuid.NewString()
	}

	sum := &Summary{BatchID: batchID, Fetched: len(msgs)}
	collector := NewAckCollector(src, batchID, c.log)
	defer collector.Flush(ctx)

	c.log.Info().Str("batch_id", batchID).Int("messages", len(msgs)).Msg("batch run started")

	var fatal error
	for _, msg := range msgs {
		if fatal != nil {
			sum.Aborted++
			continue
		}
		outcome, err := c.processOne(ctx, batchID, msg, rc, sum, collector)
		switch outcome {
		case OutcomeMerged:
			sum.Merged++
		case OutcomeOrphaned:
			sum.Orphans++
		case OutcomeSkipped:
			sum.Skipped++
		case OutcomeAborted:
			sum.Aborted++
			fatal = err
			c.log.Error().Err(err).Str("message_id", msg.MessageID).
				Msg("persistence failure, aborting remaining batch")
		}
	}

	c.log.Info().
		Str("batch_id", batchID).
		Int("merged", sum.Merged).
		Int("orphans", sum.Orphans).
		Int("skipped", sum.Skipped).
		Int("aborted", sum.Aborted).
		Int("documents", sum.Documents).
		Msg("batch run finished")

	if fatal != nil {
		return sum, fmt.Errorf("batch %s aborted: %w", batchID, fatal)
	}
	return sum, nil
}

func (c *Coordinator) processOne(ctx context.Context, batchID string, msg *InboundMessage, rc RunContext, sum *Summary, collector *AckCollector) (Outcome, error) {
	if err := msg.Validate(); err != nil {
		c.log.Warn().Err(err).Str("message_id", msg.MessageID).Msg("invalid message skipped")
		c.audit(ctx, batchID, msg, rc, audit.DispositionSkipped, err.Error(), nil, nil)
		collector.Record(ctx, Ack{MessageID: msg.MessageID, Accepted: false, Detail: err.Error()})
		return OutcomeSkipped, nil
	}

	if msg.Facility.Code != "" {
		f := &facility.Facility{Code: msg.Facility.Code, Name: msg.Facility.Name}
		setIf(&f.Address, msg.Facility.Address)
		setIf(&f.City, msg.Facility.City)
		setIf(&f.State, msg.Facility.State)
		setIf(&f.Zip, msg.Facility.Zip)
		setIf(&f.Phone, msg.Facility.Phone)
		setIf(&f.Director, msg.Facility.Director)
		setIf(&f.NPI, msg.Facility.NPI)
		if err := c.facilities.Sync(ctx, f); err != nil {
			return OutcomeAborted, err
		}
	}

	pat, err := c.patients.Resolve(ctx, msg.Identifiers())
	if err != nil {
		return OutcomeAborted, err
	}

	patientID := uuid.Nil
	if pat != nil {
		patientID = pat.ID
	}
	ord, err := c.orderResolver.Resolve(ctx, msg.OrderNumber, msg.ControlID, msg.LabID, patientID)
	if err != nil {
		return OutcomeAborted, err
	}

	// A control-id match may land on an order whose patient link was
	// corrected after transmission. Adopt that patient when the message's
	// date of birth confirms it.
	if ord != nil && pat == nil {
		owner, err := c.patientStore.GetByID(ctx, ord.PatientID)
		if err != nil {
			return OutcomeAborted, fmt.Errorf("load order patient: %w", err)
		}
		if birthDateMatches(owner, msg.Patient.BirthDate) {
			pat = owner
		} else {
			ord = nil
		}
	}

	if pat == nil {
		orphan, err := c.factory.CreateOrphan(ctx, order.PlaceholderRequest{
			OrderNumber:  msg.OrderNumber,
			ControlID:    msg.ControlID,
			LabID:        msg.LabID,
			PatientName:  msg.PatientDisplayName(),
			ProviderName: msg.ProviderDisplayName(),
			Raw:          msg.Raw,
		})
		if err != nil {
			return OutcomeAborted, err
		}
		c.log.Info().Str("message_id", msg.MessageID).Str("orphan_number", orphan.OrderNumber).
			Msg("no patient match, stored as orphan")
		c.audit(ctx, batchID, msg, rc, audit.DispositionOrphan, "no patient match", nil, &orphan.ID)
		collector.Record(ctx, Ack{MessageID: msg.MessageID, Accepted: true})
		return OutcomeOrphaned, nil
	}

	if ord == nil {
		ord, err = c.factory.CreateOrder(ctx, order.PlaceholderRequest{
			PatientID:        pat.ID,
			OrderNumber:      msg.OrderNumber,
			ControlID:        msg.ControlID,
			LabID:            msg.LabID,
			FacilityCode:     msg.Facility.Code,
			ProviderUsername: msg.Provider.Username,
			OrderedAt:        msg.OrderedAt,
			CollectedAt:      msg.CollectedAt,
			Raw:              msg.Raw,
		})
		if err != nil {
			return OutcomeAborted, err
		}
		c.log.Info().Str("message_id", msg.MessageID).Str("order_number", ord.OrderNumber).
			Msg("unsolicited results, synthesized placeholder order")
	}

	res, err := c.merger.Merge(ctx, ord, msg.Reports)
	if err != nil {
		return OutcomeAborted, err
	}
	sum.Results += res.ResultCount
	sum.Abnormal += res.AbnormalCount

	var firstDocID uuid.UUID
	for i, payload := range documentPayloads(msg, ord.OrderNumber) {
		doc, err := c.publisher.Publish(ctx, documents.PublishRequest{
			PatientID:   pat.ID,
			OrderID:     ord.ID,
			OrderNumber: ord.OrderNumber,
			LabName:     msg.Facility.Name,
			Content:     payload.Content,
			MimeType:    payload.MimeType,
			ReceivedAt:  time.Now().UTC(),
		})
		if err != nil {
			return OutcomeAborted, err
		}
		sum.Documents++
		if i == 0 {
			firstDocID = doc.ID
		}
	}
	if err := c.status.AttachResultDocument(ctx, ord, firstDocID); err != nil {
		return OutcomeAborted, err
	}

	if err := c.status.Apply(ctx, ord, res.Status); err != nil {
		return OutcomeAborted, err
	}

	recipient := msg.Provider.Username
	if ord.ProviderUsername != nil && *ord.ProviderUsername != "" {
		recipient = *ord.ProviderUsername
	}
	c.notifier.ResultsReady(ctx, pat.ID, recipient, pat.DisplayName(), msg.Facility.Name, res.AbnormalCount)

	detail := fmt.Sprintf("status=%s reports=%d results=%d abnormal=%d", res.Status, res.ReportCount, res.ResultCount, res.AbnormalCount)
	c.audit(ctx, batchID, msg, rc, audit.DispositionMerged, detail, &ord.ID, nil)
	collector.Record(ctx, Ack{MessageID: msg.MessageID, Accepted: true})
	return OutcomeMerged, nil
}

// audit appends a trail row. The trail is best effort during a run; a
// failure to write it is logged, not escalated.
func (c *Coordinator) audit(ctx context.Context, batchID string, msg *InboundMessage, rc RunContext, disposition, detail string, orderID, orphanID *uuid.UUID) {
	rec := &audit.Record{
		BatchID:     batchID,
		MessageID:   msg.MessageID,
		LabID:       msg.LabID,
		OrderID:     orderID,
		OrphanID:    orphanID,
		Disposition: disposition,
		Detail:      detail,
		Operator:    rc.Operator,
	}
	if err := c.trail.Create(ctx, rec); err != nil {
		c.log.Warn().Err(err).Str("message_id", msg.MessageID).Msg("could not write audit record")
	}
}

// documentPayloads returns the documents to publish for a message, in the
// order the lab attached them. A message with no usable attachment gets a
// rendered plain-text report so every merged order has a document.
func documentPayloads(msg *InboundMessage, orderNumber string) []EmbeddedDocument {
	var out []EmbeddedDocument
	for _, d := range msg.Documents {
		if len(d.Content) == 0 {
			continue
		}
		mime := d.MimeType
		if mime == "" {
			mime = "application/pdf"
		}
		out = append(out, EmbeddedDocument{Content: d.Content, MimeType: mime})
	}
	if len(out) == 0 {
		out = append(out, EmbeddedDocument{
			Content:  renderTextReport(msg, orderNumber),
			MimeType: "text/plain",
		})
	}
	return out
}

func birthDateMatches(p *patient.Patient, birthDate string) bool {
	if p == nil || p.BirthDate == nil {
		return false
	}
	dob, ok := patient.ParseBirthDate(birthDate)
	if !ok {
		return false
	}
	return p.BirthDate.Equal(dob)
}

func setIf(dst **string, v string) {
	if v != "" {
		*dst = &v
	}
}
