package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
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

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_batch_audit (id, batch_id, message_id, lab_id, order_id, orphan_id,
			disposition, detail, operator, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.BatchID, rec.MessageID, rec.LabID, rec.OrderID, rec.OrphanID,
		rec.Disposition, rec.Detail, rec.Operator, rec.CreatedAt)
	return err
}

func (r *repoPG) ListByBatch(ctx context.Context, batchID string) ([]*Record, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, batch_id, message_id, lab_id, order_id, orphan_id, disposition, detail, operator, created_at
		FROM lab_batch_audit WHERE batch_id = $1 ORDER BY created_at`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.MessageID, &rec.LabID, &rec.OrderID,
			&rec.OrphanID, &rec.Disposition, &rec.Detail, &rec.Operator, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
