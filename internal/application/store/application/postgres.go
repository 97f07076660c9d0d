package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/postgres"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/tx"
)

const selectColumns = `
	id, full_name, company_organisation, email_address, address_line_1, address_line_2,
	address_town, address_county, address_postcode, phone_number, uprn,
	convictions, comply_with_terms, created_by_licensing_officer, created_at, updated_at`

// PostgresStore persists applications in PostgreSQL. Every statement runs on
// the transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed application store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIfIDAvailable inserts an empty application. The primary key makes the
// check and insert atomic; a duplicate key is reported as ErrAlreadyUsed.
// Soft-deleted rows keep their key, so a revoked identity also conflicts.
func (s *PostgresStore) CreateIfIDAvailable(ctx context.Context, app *models.Application) error {
	_, err := tx.Execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO applications (id, created_at, updated_at) VALUES ($1, $2, $3)`,
		int(app.ID), app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id models.ApplicationID) (*models.Application, error) {
	return s.find(ctx, id, "")
}

// FindForUpdate locks the row until the surrounding transaction ends.
func (s *PostgresStore) FindForUpdate(ctx context.Context, id models.ApplicationID) (*models.Application, error) {
	return s.find(ctx, id, " FOR UPDATE")
}

func (s *PostgresStore) find(ctx context.Context, id models.ApplicationID, lock string) (*models.Application, error) {
	query := `SELECT` + selectColumns + ` FROM applications WHERE id = $1 AND deleted_at IS NULL` + lock
	row := tx.Execer(ctx, s.db).QueryRowContext(ctx, query, int(id))
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Application, error) {
	rows, err := tx.Execer(ctx, s.db).QueryContext(ctx,
		`SELECT`+selectColumns+` FROM applications WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

// Update writes every scalar field of app.
func (s *PostgresStore) Update(ctx context.Context, app *models.Application) error {
	f := app.ApplicationFields
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, `
		UPDATE applications SET
			full_name = $2, company_organisation = $3, email_address = $4,
			address_line_1 = $5, address_line_2 = $6, address_town = $7,
			address_county = $8, address_postcode = $9, phone_number = $10, uprn = $11,
			convictions = $12, comply_with_terms = $13, created_by_licensing_officer = $14,
			updated_at = $15
		WHERE id = $1 AND deleted_at IS NULL`,
		int(app.ID), f.FullName, f.CompanyOrganisation, f.EmailAddress,
		f.AddressLine1, f.AddressLine2, f.AddressTown,
		f.AddressCounty, f.AddressPostcode, f.PhoneNumber, f.UPRN,
		f.Convictions, f.ComplyWithTerms, f.CreatedByLicensingOfficer,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return requireRow(res, "update application")
}

// Patch writes only the columns present in p.
func (s *PostgresStore) Patch(ctx context.Context, id models.ApplicationID, p models.Patch, now time.Time) error {
	sets, args := patchAssignments(p)
	args = append(args, now, int(id))
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)-1))
	query := fmt.Sprintf(`UPDATE applications SET %s WHERE id = $%d AND deleted_at IS NULL`,
		strings.Join(sets, ", "), len(args))

	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch application: %w", err)
	}
	return requireRow(res, "patch application")
}

// Delete soft-deletes the application by stamping deleted_at.
func (s *PostgresStore) Delete(ctx context.Context, id models.ApplicationID, now time.Time) error {
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx,
		`UPDATE applications SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		int(id), now,
	)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return requireRow(res, "delete application")
}

func patchAssignments(p models.Patch) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addString := func(column string, v *string) {
		if v != nil {
			add(column, *v)
		}
	}
	addBool := func(column string, v *bool) {
		if v != nil {
			add(column, *v)
		}
	}

	addString("full_name", p.FullName)
	addString("company_organisation", p.CompanyOrganisation)
	addString("email_address", p.EmailAddress)
	addString("address_line_1", p.AddressLine1)
	addString("address_line_2", p.AddressLine2)
	addString("address_town", p.AddressTown)
	addString("address_county", p.AddressCounty)
	addString("address_postcode", p.AddressPostcode)
	addString("phone_number", p.PhoneNumber)
	addBool("convictions", p.Convictions)
	addBool("comply_with_terms", p.ComplyWithTerms)
	addBool("created_by_licensing_officer", p.CreatedByLicensingOfficer)
	return sets, args
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*models.Application, error) {
	var (
		id                                                      int
		fullName, company, email, line1, line2, town, county    sql.NullString
		postcode, phone, uprn                                   sql.NullString
		convictions, complyWithTerms, createdByLicensingOfficer sql.NullBool
		app                                                     models.Application
	)
	err := row.Scan(
		&id, &fullName, &company, &email, &line1, &line2,
		&town, &county, &postcode, &phone, &uprn,
		&convictions, &complyWithTerms, &createdByLicensingOfficer,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.ID = models.ApplicationID(id)
	app.ApplicationFields = models.ApplicationFields{
		FullName:                  fullName.String,
		CompanyOrganisation:       company.String,
		EmailAddress:              email.String,
		AddressLine1:              line1.String,
		AddressLine2:              line2.String,
		AddressTown:               town.String,
		AddressCounty:             county.String,
		AddressPostcode:           postcode.String,
		PhoneNumber:               phone.String,
		UPRN:                      uprn.String,
		Convictions:               convictions.Bool,
		ComplyWithTerms:           complyWithTerms.Bool,
		CreatedByLicensingOfficer: createdByLicensingOfficer.Bool,
	}
	return &app, nil
}
