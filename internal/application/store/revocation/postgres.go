package revocation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/tx"
)

// PostgresStore writes revocation audit records to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed revocation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Revocation) error {
	err := tx.Execer(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO revocations (application_id, reason, is_revoked, revoked_by, created_at)
		VALUES ($1, $2, TRUE, NULLIF($3, ''), $4)
		RETURNING id`,
		int(r.ApplicationID), r.Reason, r.RevokedBy, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert revocation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByApplication(ctx context.Context, applicationID models.ApplicationID) ([]*models.Revocation, error) {
	rows, err := tx.Execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, application_id, reason, revoked_by, created_at
		FROM revocations
		WHERE application_id = $1
		ORDER BY id`,
		int(applicationID),
	)
	if err != nil {
		return nil, fmt.Errorf("list revocations: %w", err)
	}
	defer rows.Close()

	var out []*models.Revocation
	for rows.Next() {
		var (
			r         models.Revocation
			appID     int
			revokedBy sql.NullString
		)
		if err := rows.Scan(&r.ID, &appID, &r.Reason, &revokedBy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revocation: %w", err)
		}
		r.ApplicationID = models.ApplicationID(appID)
		r.RevokedBy = revokedBy.String
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revocations: %w", err)
	}
	return out, nil
}
