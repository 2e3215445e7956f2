package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labrecon/labrecon/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const orderColumns = `id, patient_id, encounter_id, order_number, control_id, lab_id,
	facility_code, provider_id, provider_username, status, reviewed_by, notified_by,
	notified_person, result_document_id, ordered_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.PatientID, &o.EncounterID, &o.OrderNumber, &o.ControlID,
		&o.LabID, &o.FacilityCode, &o.ProviderID, &o.ProviderUsername, &o.Status,
		&o.ReviewedBy, &o.NotifiedBy, &o.NotifiedPerson, &o.ResultDocumentID,
		&o.OrderedAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_order (id, patient_id, encounter_id, order_number, control_id, lab_id,
			facility_code, provider_id, provider_username, status, ordered_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		o.ID, o.PatientID, o.EncounterID, o.OrderNumber, o.ControlID, o.LabID,
		o.FacilityCode, o.ProviderID, o.ProviderUsername, o.Status, o.OrderedAt,
		o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM lab_order WHERE id = $1`, id))
}

func (r *repoPG) FindByNumberAndPatient(ctx context.Context, number string, patientID uuid.UUID, labID string) (*Order, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM lab_order
		 WHERE order_number = $1 AND patient_id = $2 AND lab_id = $3`,
		number, patientID, labID))
}

func (r *repoPG) FindByNumberAndControl(ctx context.Context, number, controlID, labID string) (*Order, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM lab_order
		 WHERE order_number = $1 AND control_id = $2 AND lab_id = $3`,
		number, controlID, labID))
}

func (r *repoPG) Update(ctx context.Context, o *Order) error {
	o.UpdatedAt = time.Now().UTC()
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_order SET
			status = $2, reviewed_by = $3, notified_by = $4, notified_person = $5,
			result_document_id = $6, encounter_id = $7, control_id = $8, updated_at = $9
		WHERE id = $1`,
		o.ID, o.Status, o.ReviewedBy, o.NotifiedBy, o.NotifiedPerson,
		o.ResultDocumentID, o.EncounterID, o.ControlID, o.UpdatedAt)
	return err
}

func (r *repoPG) NumberInUse(ctx context.Context, number string) (bool, error) {
	var used bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM lab_order WHERE order_number = $1)`, number).Scan(&used)
	return used, err
}

type orphanRepoPG struct{ pool *pgxpool.Pool }

func NewOrphanRepoPG(pool *pgxpool.Pool) OrphanRepository {
	return &orphanRepoPG{pool: pool}
}

func (r *orphanRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *orphanRepoPG) Create(ctx context.Context, o *Orphan) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now().UTC()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_orphan (id, order_number, control_id, lab_id, patient_name,
			provider_name, active, raw, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.OrderNumber, o.ControlID, o.LabID, o.PatientName,
		o.ProviderName, o.Active, o.Raw, o.CreatedAt)
	return err
}

func (r *orphanRepoPG) NumberInUse(ctx context.Context, number string) (bool, error) {
	var used bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM lab_orphan WHERE order_number = $1 AND active)`, number).Scan(&used)
	return used, err
}

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository {
	return &itemRepoPG{pool: pool}
}

func (r *itemRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *itemRepoPG) Create(ctx context.Context, it *Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_order_item (id, order_id, seq, code, name, source, reflex_parent_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		it.ID, it.OrderID, it.Seq, it.Code, it.Name, it.Source, it.ReflexParentCode)
	return err
}

func (r *itemRepoPG) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, seq, code, name, source, reflex_parent_code
		FROM lab_order_item WHERE order_id = $1 ORDER BY seq`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Seq, &it.Code, &it.Name,
			&it.Source, &it.ReflexParentCode); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *itemRepoPG) DeleteUnordered(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM lab_order_item WHERE order_id = $1 AND source <> $2`,
		orderID, SourceOrdered)
	return err
}

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository {
	return &reportRepoPG{pool: pool}
}

func (r *reportRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *reportRepoPG) CreateReport(ctx context.Context, rep *Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_result_report (id, order_id, item_id, seq, specimen_number,
			status, collected_at, reported_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rep.ID, rep.OrderID, rep.ItemID, rep.Seq, rep.SpecimenNumber,
		rep.Status, rep.CollectedAt, rep.ReportedAt, rep.Notes)
	return err
}

func (r *reportRepoPG) CreateValue(ctx context.Context, v *ResultValue) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_result_value (id, report_id, code, text, value, units,
			reference_range, abnormal_flag, status, facility_code, comments)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		v.ID, v.ReportID, v.Code, v.Text, v.Value, v.Units,
		v.ReferenceRange, v.AbnormalFlag, v.Status, v.FacilityCode, v.Comments)
	return err
}

func (r *reportRepoPG) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `
		DELETE FROM lab_result_value
		WHERE report_id IN (SELECT id FROM lab_result_report WHERE order_id = $1)`, orderID); err != nil {
		return err
	}
	_, err := conn.Exec(ctx, `DELETE FROM lab_result_report WHERE order_id = $1`, orderID)
	return err
}
