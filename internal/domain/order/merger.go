package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/labrecon/labrecon/internal/platform/db"
)

// MergeResult summarizes one merge pass for the coordinator.
type MergeResult struct {
	Status        string // rolled-up order status: z, c or x
	ReportCount   int
	ResultCount   int
	AbnormalCount int
	AddedItems    int // items created for lab-added or reflex tests
}

// Merger applies a result message to an order with full-replace semantics:
// within one transaction every prior report and value is dropped, lab-added
// and reflex items are removed, and the incoming reports are written fresh.
// Reprocessing the same message is therefore a no-op on final state.
type Merger struct {
	tx      db.TxRunner
	items   ItemRepository
	reports ReportRepository
}

func NewMerger(tx db.TxRunner, items ItemRepository, reports ReportRepository) *Merger {
	return &Merger{tx: tx, items: items, reports: reports}
}

func (m *Merger) Merge(ctx context.Context, ord *Order, inbound []InboundReport) (*MergeResult, error) {
	res := &MergeResult{}
	err := m.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := m.reports.DeleteByOrder(ctx, ord.ID); err != nil {
			return fmt.Errorf("clear reports for order %s: %w", ord.OrderNumber, err)
		}
		if err := m.items.DeleteUnordered(ctx, ord.ID); err != nil {
			return fmt.Errorf("clear lab-added items for order %s: %w", ord.OrderNumber, err)
		}

		items, err := m.items.ListByOrder(ctx, ord.ID)
		if err != nil {
			return fmt.Errorf("list items for order %s: %w", ord.OrderNumber, err)
		}
		byCode := make(map[string]*Item, len(items))
		maxSeq := 0
		for _, it := range items {
			byCode[it.Code] = it
			if it.Seq > maxSeq {
				maxSeq = it.Seq
			}
		}

		var statuses []string
		for i := range inbound {
			rep := &inbound[i]
			item := byCode[rep.Code]
			if item == nil {
				maxSeq++
				item = &Item{
					OrderID: ord.ID,
					Seq:     maxSeq,
					Code:    rep.Code,
					Name:    rep.Name,
					Source:  SourceAdded,
				}
				if rep.ReflexParentCode != "" {
					item.Source = SourceReflex
					parent := rep.ReflexParentCode
					item.ReflexParentCode = &parent
				}
				if err := m.items.Create(ctx, item); err != nil {
					return fmt.Errorf("create item %s for order %s: %w", rep.Code, ord.OrderNumber, err)
				}
				byCode[rep.Code] = item
				res.AddedItems++
			}

			report := &Report{
				OrderID: ord.ID,
				ItemID:  item.ID,
				Seq:     item.Seq,
				Status:  rep.Status,
			}
			if rep.SpecimenNumber != "" {
				sp := rep.SpecimenNumber
				report.SpecimenNumber = &sp
			}
			report.CollectedAt = rep.CollectedAt
			report.ReportedAt = rep.ReportedAt
			if len(rep.Notes) > 0 {
				notes := strings.Join(rep.Notes, "\n")
				report.Notes = &notes
			}
			if err := m.reports.CreateReport(ctx, report); err != nil {
				return fmt.Errorf("create report for item %s: %w", rep.Code, err)
			}
			res.ReportCount++
			statuses = append(statuses, rep.Status)

			for _, rv := range rep.Results {
				flag := NormalizeAbnormalFlag(rv.AbnormalFlag)
				value := &ResultValue{
					ReportID:     report.ID,
					Code:         rv.Code,
					Text:         rv.Text,
					Value:        rv.Value,
					AbnormalFlag: flag,
				}
				if rv.Units != "" {
					u := rv.Units
					value.Units = &u
				}
				if rv.ReferenceRange != "" {
					rr := rv.ReferenceRange
					value.ReferenceRange = &rr
				}
				if rv.Status != "" {
					st := rv.Status
					value.Status = &st
				}
				if rv.FacilityCode != "" {
					fc := rv.FacilityCode
					value.FacilityCode = &fc
				}
				if rv.Comments != "" {
					c := rv.Comments
					value.Comments = &c
				}
				if err := m.reports.CreateValue(ctx, value); err != nil {
					return fmt.Errorf("create result value %s: %w", rv.Code, err)
				}
				res.ResultCount++
				if IsAbnormal(flag) {
					res.AbnormalCount++
				}
			}
		}

		res.Status = RollupStatus(statuses)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
