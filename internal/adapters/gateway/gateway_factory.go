package gateway

import (
	"fmt"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/clients/postgres"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/observability"
	"github.com/telecare/clinic-dashboard/backend/pkg/config"
)

// Deps carries the infrastructure clients a gateway mode may need.
type Deps struct {
	Postgres *postgres.Client
	Metrics  *observability.Metrics
}

// composite pairs a data adapter with an auth adapter into the full
// Gateway contract.
type composite struct {
	providers.DataGateway
	providers.AuthGateway
}

// NewGateway selects the gateway implementation from configuration.
//
// "hosted" delegates both data and auth to the remote backend.
// "postgres" keeps the tables in a local database; auth still goes
// through the hosted endpoint when one is configured, and falls back
// to the mock credential store for development otherwise.
// "mock" is fully in-memory.
func NewGateway(cfg *config.GatewayConfig, deps Deps) (providers.Gateway, error) {
	switch cfg.Mode {
	case "hosted":
		return NewHostedAdapter(cfg.BaseURL, cfg.APIKey, deps.Metrics), nil
	case "postgres":
		if deps.Postgres == nil {
			return nil, fmt.Errorf("postgres gateway mode requires a database client")
		}
		data := NewPostgresAdapter(deps.Postgres)
		if cfg.BaseURL != "" {
			return composite{DataGateway: data, AuthGateway: NewHostedAdapter(cfg.BaseURL, cfg.APIKey, deps.Metrics)}, nil
		}
		return composite{DataGateway: data, AuthGateway: NewMockAdapter()}, nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown gateway mode %q", cfg.Mode)
	}
}
