package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"webar-backend/internal/logutils"
	"webar-backend/internal/models"
)

// BcryptCost is the adaptive-hash cost used for every stored password.
const BcryptCost = 12

// SeedAdmin creates the initial administrator account if it does not
// exist yet. Idempotent; the password is only needed on first boot.
func (c *Client) SeedAdmin(ctx context.Context, email, name, password string) error {
	var existing string
	err := c.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	if password == "" {
		return fmt.Errorf("ADMIN_DEFAULT_PASSWORD is required to create the admin account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, role_id)
		VALUES ($1, $2, $3, (SELECT id FROM roles WHERE name = $4))
	`, name, email, string(hash), models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logutils.Log.Infof("admin account %s created", email)
	return nil
}
