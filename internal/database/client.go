package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"webar-backend/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrQuotaExceeded  = errors.New("project limit reached")
)

const pgUniqueViolation = "23505"

type Client struct {
	db *sql.DB
}

// Open prepares a client without contacting the server; readiness is
// established later via Ping so the HTTP listener can come up first.
func Open(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Client{db: db}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) DB() *sql.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

// GetUserByEmail looks an account up by exact email match, including the
// password hash, for credential verification.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := c.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, r.name, u.project_limit, u.is_active, u.created_at
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.email = $1
	`, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.ProjectLimit, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns every account except the given one, newest first.
func (c *Client) ListUsers(ctx context.Context, excludeID uuid.UUID) ([]models.User, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, r.name, u.project_limit, u.is_active, u.created_at
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.id != $1
		ORDER BY u.created_at DESC
	`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.ProjectLimit, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (c *Client) CreateUser(ctx context.Context, name, email, passwordHash string, projectLimit int) (*models.User, error) {
	var u models.User
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role_id, project_limit)
		VALUES ($1, $2, $3, (SELECT id FROM roles WHERE name = $4), $5)
		RETURNING id, name, email, (SELECT name FROM roles WHERE id = role_id), project_limit, is_active, created_at
	`, name, email, passwordHash, models.RoleStandard, projectLimit).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.ProjectLimit, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func (c *Client) UpdateUserLimit(ctx context.Context, userID uuid.UUID, projectLimit int) (*models.User, error) {
	var u models.User
	err := c.db.QueryRowContext(ctx, `
		UPDATE users
		SET project_limit = $2
		WHERE id = $1
		RETURNING id, name, email, (SELECT name FROM roles WHERE id = role_id), project_limit, is_active, created_at
	`, userID, projectLimit).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.ProjectLimit, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes the account; owned projects go with it via the
// ON DELETE CASCADE on ar_projects.
func (c *Client) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const projectColumns = `id, user_id, name, asset_type, model_url, model_public_id, video_url,
		marker_type, marker_url, marker_public_id, view_url, chroma_key_color, created_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.AssetType, &p.ModelURL, &p.ModelPublicID,
		&p.VideoURL, &p.MarkerType, &p.MarkerURL, &p.MarkerPublicID,
		&p.ViewURL, &p.ChromaKeyColor, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns the owner's projects, newest first.
func (c *Client) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM ar_projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// CreateProject inserts a project after the quota check. The owner's user
// row is locked for the duration of the transaction so concurrent creates
// for the same account serialize and the count can never pass the limit.
func (c *Client) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var limit int
	err = tx.QueryRowContext(ctx,
		`SELECT project_limit FROM users WHERE id = $1 FOR UPDATE`, p.UserID,
	).Scan(&limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read project limit: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ar_projects WHERE user_id = $1`, p.UserID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	if count >= limit {
		return nil, ErrQuotaExceeded
	}

	created, err := scanProject(tx.QueryRowContext(ctx, `
		INSERT INTO ar_projects (id, user_id, name, asset_type, model_url, model_public_id,
			video_url, marker_type, marker_url, marker_public_id, view_url, chroma_key_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+projectColumns+`
	`, p.ID, p.UserID, p.Name, p.AssetType, p.ModelURL, p.ModelPublicID,
		p.VideoURL, p.MarkerType, p.MarkerURL, p.MarkerPublicID, p.ViewURL, p.ChromaKeyColor))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit project: %w", err)
	}
	return created, nil
}

// RenameProject updates the name. Ownership sits in the WHERE clause, so a
// non-owner gets the same ErrNotFound as a missing row.
func (c *Client) RenameProject(ctx context.Context, userID, projectID uuid.UUID, name string) (*models.Project, error) {
	p, err := scanProject(c.db.QueryRowContext(ctx, `
		UPDATE ar_projects
		SET name = $3
		WHERE id = $1 AND user_id = $2
		RETURNING `+projectColumns+`
	`, projectID, userID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to rename project: %w", err)
	}
	return p, nil
}

// DeleteProject removes the row and returns it so the caller can clean up
// the externally stored asset and marker afterwards. The row deletion is
// the authoritative outcome of the operation.
func (c *Client) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	p, err := scanProject(c.db.QueryRowContext(ctx, `
		DELETE FROM ar_projects
		WHERE id = $1 AND user_id = $2
		RETURNING `+projectColumns+`
	`, projectID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete project: %w", err)
	}
	return p, nil
}

// GetPublicProject looks a project up by id alone. Backs the
// unauthenticated viewer endpoint.
func (c *Client) GetPublicProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	p, err := scanProject(c.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM ar_projects
		WHERE id = $1
	`, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}
