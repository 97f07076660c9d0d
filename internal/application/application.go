package application

import (
	"database/sql"
	"log/slog"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/handler"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/service"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/store"
	appstore "github.com/jmassie/standard-forestry-operations-api/internal/application/store/application"
	revocationstore "github.com/jmassie/standard-forestry-operations-api/internal/application/store/revocation"
	settstore "github.com/jmassie/standard-forestry-operations-api/internal/application/store/sett"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/postgres"
)

// Service exposes the application lifecycle orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the application service.
type Handler = handler.Handler

// Stores bundles the persistence capability and its transaction boundary.
type Stores struct {
	Applications service.ApplicationStore
	Setts        service.SettStore
	Revocations  service.RevocationStore
	Tx           service.StoreTx
}

// NewMemoryStores returns in-memory stores sharing one transaction boundary.
func NewMemoryStores() Stores {
	tx := store.NewMemoryTx()
	return Stores{
		Applications: appstore.NewInMemory(appstore.WithMemoryTx(tx)),
		Setts:        settstore.NewInMemory(settstore.WithMemoryTx(tx)),
		Revocations:  revocationstore.NewInMemory(revocationstore.WithMemoryTx(tx)),
		Tx:           tx,
	}
}

// NewPostgresStores returns PostgreSQL-backed stores running transactions on db.
func NewPostgresStores(db *sql.DB) Stores {
	return Stores{
		Applications: appstore.NewPostgres(db),
		Setts:        settstore.NewPostgres(db),
		Revocations:  revocationstore.NewPostgres(db),
		Tx:           postgres.NewTxRunner(db),
	}
}

// NewService constructs the application service over stores.
func NewService(stores Stores, opts ...service.Option) *Service {
	opts = append([]service.Option{service.WithStoreTx(stores.Tx)}, opts...)
	return service.New(stores.Applications, stores.Setts, stores.Revocations, opts...)
}

// NewHandler constructs the HTTP handler for the v1 and v2 routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
