// Package bootstrap holds one-time startup initialization.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/repository"
	"github.com/cineforum/club-api/internal/utils"
)

// AdminStore is the slice of admin persistence the bootstrap needs.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (model.Admin, error)
	Create(ctx context.Context, username, passwordHash string) (model.Admin, error)
}

// EnsureDefaultAdmin seeds the configured default admin when it does not
// exist yet. Idempotent: an existing admin is left untouched, and losing
// a seeding race to another instance counts as success. The default
// password comes from configuration and should be rotated after first
// login.
func EnsureDefaultAdmin(ctx context.Context, store AdminStore, username, password string, bcryptCost int) error {
	_, err := store.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("lookup default admin: %w", err)
	}

	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}
	if _, err := store.Create(ctx, username, hash); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return nil // another instance seeded first
		}
		return fmt.Errorf("create default admin: %w", err)
	}
	log.Printf("default admin %q created; rotate its password", username)
	return nil
}
