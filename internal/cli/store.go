package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/grove/internal/config"
	"github.com/julianstephens/grove/internal/keyring"
	"github.com/julianstephens/grove/internal/logger"
	"github.com/julianstephens/grove/internal/storage"
	"github.com/julianstephens/grove/internal/storage/mongo"
	"github.com/julianstephens/grove/internal/storage/postgres"
	"github.com/julianstephens/grove/internal/storage/sqlite"
)

// Backend kinds selected from the store location.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongodb"
)

// BackendOf classifies a store location by its prefix. Anything that is not
// a PostgreSQL or MongoDB URI is a SQLite path.
func BackendOf(location string) string {
	switch {
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"),
		strings.Contains(location, "host=") && strings.Contains(location, "dbname="):
		return BackendPostgres
	case strings.HasPrefix(location, "mongodb://"), strings.HasPrefix(location, "mongodb+srv://"):
		return BackendMongo
	default:
		return BackendSQLite
	}
}

// ResolveStore picks the store location: an explicit flag, then a non-default
// config or env value, then the keyring, then the default SQLite path.
// fromKeyring reports whether the keyring supplied it.
func ResolveStore(flag string, cfg *config.Config) (location string, fromKeyring bool, err error) {
	if flag != "" {
		return config.ExpandPath(flag), false, nil
	}
	if cfg.Store != config.Default().Store && cfg.Store != config.ExpandPath(config.Default().Store) {
		return cfg.Store, false, nil
	}
	secret, err := keyring.Get(keyring.StoreAccount)
	switch {
	case err == nil:
		return secret, true, nil
	case errors.Is(err, keyring.ErrNotFound):
		return cfg.Store, false, nil
	default:
		logger.Debug("Keyring unavailable", "error", err)
		return cfg.Store, false, nil
	}
}

// OpenStore builds the provider for location without connecting. PostgreSQL
// strings must not embed a password unless they came from the keyring.
func OpenStore(location string, fromKeyring bool) (storage.Provider, error) {
	switch BackendOf(location) {
	case BackendPostgres:
		if err := postgres.ValidateConnString(location); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) || !fromKeyring {
				return nil, fmt.Errorf("%w (store the connection string with 'grove keyring set' or use .pgpass)", err)
			}
		}
		return postgres.New(location), nil
	case BackendMongo:
		return mongo.New(location), nil
	default:
		return sqlite.NewStore(location), nil
	}
}
