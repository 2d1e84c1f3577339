// Package store persists user settings as key/value pairs, the analog of a
// browser profile's synced storage. The pipeline reads a fresh snapshot at
// the start of every classify/dispatch cycle; writes come only from the
// settings CLI.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/interview-copilot/internal/settings"
)

// Store is the settings persistence interface.
type Store interface {
	// Settings returns stored values merged over defaults, normalized.
	Settings(ctx context.Context) (settings.Settings, error)
	// Raw returns the stored key/value pairs without defaults applied.
	Raw(ctx context.Context) (map[string]json.RawMessage, error)
	// Put upserts a single key.
	Put(ctx context.Context, key string, value json.RawMessage) error
	// PutAll upserts every pair in kv.
	PutAll(ctx context.Context, kv map[string]json.RawMessage) error

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
