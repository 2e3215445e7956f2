package patient

import (
	"context"
	"errors"
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

const patientCols = `id, mrn, pub_id, external_id, first_name, last_name, middle_name,
	birth_date, sex, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.MRN, &p.PubID, &p.ExternalID, &p.FirstName, &p.LastName, &p.MiddleName,
		&p.BirthDate, &p.Sex, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) FindByMRN(ctx context.Context, mrn string, birthDate time.Time) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE mrn = $1 AND birth_date = $2`, mrn, birthDate))
}

func (r *repoPG) FindByPubID(ctx context.Context, pubID string, birthDate time.Time) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE pub_id = $1 AND birth_date = $2`, pubID, birthDate))
}

func (r *repoPG) FindByExternalID(ctx context.Context, externalID string, birthDate time.Time) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE external_id = $1 AND birth_date = $2`, externalID, birthDate))
}

func (r *repoPG) FindByDemographics(ctx context.Context, lastName, firstName string, birthDate time.Time, sexInitial string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE LOWER(last_name) = LOWER($1)
		  AND LOWER(first_name) = LOWER($2)
		  AND birth_date = $3
		  AND UPPER(LEFT(sex, 1)) = UPPER($4)`,
		lastName, firstName, birthDate, sexInitial))
}
