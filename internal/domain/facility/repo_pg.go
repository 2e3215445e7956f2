package facility

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

func (r *repoPG) Upsert(ctx context.Context, f *Facility) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_facility (id, code, name, address, city, state, zip, phone, director, npi)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip,
			phone = EXCLUDED.phone,
			director = EXCLUDED.director,
			npi = EXCLUDED.npi,
			updated_at = NOW()`,
		f.ID, f.Code, f.Name, f.Address, f.City, f.State, f.Zip, f.Phone, f.Director, f.NPI)
	return err
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Facility, error) {
	var f Facility
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, code, name, address, city, state, zip, phone, director, npi, created_at, updated_at
		FROM lab_facility WHERE code = $1`, code).
		Scan(&f.ID, &f.Code, &f.Name, &f.Address, &f.City, &f.State, &f.Zip, &f.Phone, &f.Director, &f.NPI, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
