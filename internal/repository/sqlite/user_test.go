package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/restaurant-directory/internal/apperror"
	"github.com/sakif/restaurant-directory/internal/model"
)

// createTestUser inserts a user with a placeholder hash, failing the test
// on error. Real hashing is covered in internal/auth — the repository only
// stores the string.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholde",
	}
	if err := db.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	u := createTestUser(t, db, "alice123")

	if u.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if u.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "alice123")

	// Same username again — a different password changes nothing
	dup := &model.User{Username: "alice123", PasswordHash: "different-hash"}
	err := db.Users().Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create(duplicate) error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetByUsername(t *testing.T) {
	db := newTestDB(t)
	want := createTestUser(t, db, "alice123")

	got, err := db.Users().GetByUsername(context.Background(), "alice123")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("ID = %q, want %q", got.ID, want.ID)
	}
	if got.PasswordHash != want.PasswordHash {
		t.Error("GetByUsername() did not return the stored hash")
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByUsername(context.Background(), "nouser000")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	want := createTestUser(t, db, "alice123")

	got, err := db.Users().GetUserByID(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Username != "alice123" {
		t.Errorf("Username = %q, want %q", got.Username, "alice123")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetUserByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(missing) error = %v, want ErrNotFound", err)
	}
}
