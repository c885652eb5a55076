// Package history keeps finished import results so they can be fetched
// after the request that ran the import has returned.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/salesimport/internal/core"
)

// ErrResultNotFound is returned for unknown or expired import ids.
var ErrResultNotFound = errors.New("import result not found")

// DefaultTTL is how long results stay retrievable when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Store saves and retrieves import results by ImportID.
type Store interface {
	Save(ctx context.Context, res *core.ImportResult) error
	Get(ctx context.Context, importID string) (*core.ImportResult, error)
}
