package sett

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/tx"
)

// PostgresStore persists setts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed sett store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts sett without reading its ID back; ListByApplications returns
// it. Callers may run Create concurrently on one transaction, which is safe for
// ExecContext but not for an open result set.
func (s *PostgresStore) Create(ctx context.Context, sett *models.Sett) error {
	_, err := tx.Execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO setts (application_id, sett, grid_ref, entrances, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		int(sett.ApplicationID), sett.Sett, sett.GridRef, sett.Entrances, sett.CreatedAt, sett.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sett: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteByApplication(ctx context.Context, applicationID models.ApplicationID) error {
	_, err := tx.Execer(ctx, s.db).ExecContext(ctx,
		`DELETE FROM setts WHERE application_id = $1`, int(applicationID))
	if err != nil {
		return fmt.Errorf("delete setts: %w", err)
	}
	return nil
}

// ListByApplications loads the setts of every given application in one query.
func (s *PostgresStore) ListByApplications(ctx context.Context, ids []models.ApplicationID) (map[models.ApplicationID][]*models.Sett, error) {
	out := make(map[models.ApplicationID][]*models.Sett)
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}

	rows, err := tx.Execer(ctx, s.db).QueryContext(ctx, `
		SELECT id, application_id, sett, grid_ref, entrances, created_at, updated_at
		FROM setts
		WHERE application_id = ANY($1)
		ORDER BY application_id, id`,
		pq.Array(keys),
	)
	if err != nil {
		return nil, fmt.Errorf("list setts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sett          models.Sett
			appID         int
			name, gridRef sql.NullString
			entrances     sql.NullInt64
		)
		if err := rows.Scan(&sett.ID, &appID, &name, &gridRef, &entrances, &sett.CreatedAt, &sett.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sett: %w", err)
		}
		sett.ApplicationID = models.ApplicationID(appID)
		sett.Sett = name.String
		sett.GridRef = gridRef.String
		sett.Entrances = int(entrances.Int64)
		out[sett.ApplicationID] = append(out[sett.ApplicationID], &sett)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate setts: %w", err)
	}
	return out, nil
}
