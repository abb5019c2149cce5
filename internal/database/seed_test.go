package database

import (
	"context"
	"testing"

	"github.com/Sirneij/cryptoflow/internal/config"
	"github.com/Sirneij/cryptoflow/internal/domain"
	"github.com/Sirneij/cryptoflow/internal/repository"
	"github.com/Sirneij/cryptoflow/internal/security"
)

func testHasher() *security.PasswordHasher {
	return security.NewPasswordHasher(security.Argon2Params{
		Memory: 8, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	}, 1)
}

func TestSeedSuperuserCreatesAndNoopOnSecondRun(t *testing.T) {
	db := newSQLiteDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	cfg := config.SuperUser{
		Email: "admin@example.com", Password: "changeme-now",
		FirstName: "Root", LastName: "Admin",
	}
	if err := SeedSuperuser(ctx, users, testHasher(), cfg); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	admin, err := users.FindActiveByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if !admin.IsSuperuser || !admin.IsStaff || !admin.IsActive {
		t.Fatalf("unexpected admin flags: %+v", admin)
	}
	if admin.Password == "changeme-now" {
		t.Fatal("superuser password stored in plaintext")
	}

	if err := SeedSuperuser(ctx, users, testHasher(), cfg); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one user, got %d", count)
	}
}

func TestSeedSuperuserSkipsWhenUnconfigured(t *testing.T) {
	db := newSQLiteDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users := repository.NewUserRepository(db)

	if err := SeedSuperuser(context.Background(), users, testHasher(), config.SuperUser{}); err != nil {
		t.Fatalf("unconfigured seed must be a no-op: %v", err)
	}
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no users, got %d", count)
	}
}
