package encounter

import (
	"context"

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

func (r *repoPG) Create(ctx context.Context, e *Encounter) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO encounter (id, patient_id, provider_id, facility_id, encounter_date, reason, system_author)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.PatientID, e.ProviderID, e.FacilityID, e.Date, e.Reason, e.SystemAuthor)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	var e Encounter
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, provider_id, facility_id, encounter_date, reason, system_author, created_at, updated_at
		FROM encounter WHERE id = $1`, id).
		Scan(&e.ID, &e.PatientID, &e.ProviderID, &e.FacilityID, &e.Date, &e.Reason, &e.SystemAuthor, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
