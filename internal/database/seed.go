package database

import (
	"context"
	"fmt"

	"github.com/Sirneij/cryptoflow/internal/config"
	"github.com/Sirneij/cryptoflow/internal/domain"
	"github.com/Sirneij/cryptoflow/internal/repository"
	"github.com/Sirneij/cryptoflow/internal/security"
)

// SeedSuperuser creates the bootstrap admin account if one is
// configured. The upsert conflicts on email, so running it on every
// startup is safe.
func SeedSuperuser(ctx context.Context, users repository.UserRepository, hasher *security.PasswordHasher, cfg config.SuperUser) error {
	if cfg.Email == "" {
		return nil
	}
	hash, err := hasher.Hash(ctx, []byte(cfg.Password))
	if err != nil {
		return fmt.Errorf("hash superuser password: %w", err)
	}
	admin := &domain.User{
		Email:       cfg.Email,
		Password:    hash,
		FirstName:   cfg.FirstName,
		LastName:    cfg.LastName,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := users.UpsertSuperuser(ctx, admin); err != nil {
		return fmt.Errorf("seed superuser: %w", err)
	}
	return nil
}
