package providers

import (
	"context"
	"encoding/json"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
)

// FilterOp is a row-level comparison operator understood by the gateway.
type FilterOp string

const (
	// FilterOpEq matches rows whose column equals the value exactly.
	FilterOpEq FilterOp = "eq"
)

// Filter narrows a gateway query to rows matching a column predicate.
type Filter struct {
	Column string
	Op     FilterOp
	Value  string
}

// Eq builds an equality filter.
func Eq(column, value string) Filter {
	return Filter{Column: column, Op: FilterOpEq, Value: value}
}

// Order requests server-side ordering of query results.
type Order struct {
	Column    string
	Ascending bool
}

// DataGateway is the row-level contract of the hosted backend that
// owns the patients and appointments tables. Every dashboard
// operation is a single call through this port; the service keeps no
// storage of record of its own.
//
// Query and Insert exchange JSON arrays of rows so the same contract
// serves the hosted REST adapter, the self-hosted Postgres adapter
// and the in-memory mock without per-table method sprawl.
type DataGateway interface {
	// Query returns all rows of table matching every filter, as a
	// JSON array, optionally ordered server-side.
	Query(ctx context.Context, table string, filters []Filter, order *Order) (json.RawMessage, error)

	// Insert stores row and returns the inserted rows (with
	// gateway-assigned ids) as a JSON array.
	Insert(ctx context.Context, table string, row any) (json.RawMessage, error)

	// Delete removes the row with the given id. Deleting a row that
	// is already gone is not an error.
	Delete(ctx context.Context, table string, id int64) error
}

// AuthGateway is the session contract of the hosted backend's auth
// endpoint. Tokens are opaque to callers; only the adapters know
// their shape.
type AuthGateway interface {
	// SignInWithPassword exchanges credentials for the signed-in
	// user and an access token.
	SignInWithPassword(ctx context.Context, email, password string) (*entities.User, string, error)

	// SignOut revokes the access token's remote session.
	SignOut(ctx context.Context, accessToken string) error

	// GetCurrentUser resolves the token's user. A nil user with a
	// nil error means the token no longer maps to a session.
	GetCurrentUser(ctx context.Context, accessToken string) (*entities.User, error)
}

// Gateway bundles both contract surfaces of the hosted backend.
type Gateway interface {
	DataGateway
	AuthGateway
}
