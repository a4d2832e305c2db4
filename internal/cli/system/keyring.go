package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/keyring"
	"github.com/julianstephens/grove/internal/storage/postgres"
)

// KeyringSetCmd stores a connection string in the OS keyring.
type KeyringSetCmd struct {
	Account          string `help:"Which secret to store." enum:"store,redis" default:"store"`
	ConnectionString string `arg:"" help:"PostgreSQL or MongoDB connection string (store) or Redis URL (redis)."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	account, err := accountFor(cmd.Account)
	if err != nil {
		return err
	}

	switch account {
	case keyring.StoreAccount:
		switch cli.BackendOf(cmd.ConnectionString) {
		case cli.BackendPostgres:
			if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
				if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return fmt.Errorf("invalid connection string: %w", err)
				}
				ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
				ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
			}
		case cli.BackendMongo:
		default:
			return errors.New("store connection string must be a PostgreSQL or MongoDB URI")
		}
	case keyring.RedisAccount:
		if !strings.HasPrefix(cmd.ConnectionString, "redis://") && !strings.HasPrefix(cmd.ConnectionString, "rediss://") {
			return errors.New("redis connection string must start with redis:// or rediss://")
		}
	}

	if err := keyring.Set(account, cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	ctx.Printf("✓ %s connection string stored in OS keyring\n", cmd.Account)
	return nil
}

// KeyringDeleteCmd removes a stored connection string.
type KeyringDeleteCmd struct {
	Account string `help:"Which secret to delete." enum:"store,redis" default:"store"`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	account, err := accountFor(cmd.Account)
	if err != nil {
		return err
	}
	if err := keyring.Delete(account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s connection string found in keyring", cmd.Account)
		}
		return err
	}
	ctx.Printf("✓ %s connection string deleted from OS keyring\n", cmd.Account)
	return nil
}

// KeyringStatusCmd reports availability and what is stored, masked.
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")

	for _, name := range []string{"store", "redis"} {
		account, _ := accountFor(name)
		secret, err := keyring.Get(account)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: %s\n", name, keyring.Mask(secret))
		case errors.Is(err, keyring.ErrNotFound):
			ctx.Printf("ℹ %s: not stored\n", name)
		default:
			ctx.Printf("❌ %s: %v\n", name, err)
		}
	}
	return nil
}

func accountFor(name string) (string, error) {
	switch name {
	case "", "store":
		return keyring.StoreAccount, nil
	case "redis":
		return keyring.RedisAccount, nil
	default:
		return "", fmt.Errorf("unknown keyring account %q", name)
	}
}
