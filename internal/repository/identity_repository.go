package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/sportmaps/sportmaps-server/internal/model"
	"github.com/sportmaps/sportmaps-server/internal/utils"
)

// IdentityRepo persists rows of the 'identities' table: the credential side
// of an account.  Display data lives in ProfileRepo.
type IdentityRepo struct{ DB *sql.DB }

func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{DB: db} }

// Create inserts an identity and returns its generated uuid.  The sign-up
// metadata (name and requested role) is stored alongside the credentials so
// a missing profile can later be synthesized from it.
func (r *IdentityRepo) Create(ctx context.Context, email, password, fullName, role string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO identities (id, email, password_hash, meta_full_name, meta_role) VALUES (?,?,?,?,?)",
		id, email, hash, fullName, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches an identity by normalized email.
func (r *IdentityRepo) GetByEmail(ctx context.Context, email string) (model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.Identity
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,meta_full_name,meta_role,is_active,created_at,updated_at FROM identities WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.MetaFullName, &u.MetaRole, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches an identity by uuid.
func (r *IdentityRepo) GetByID(ctx context.Context, id string) (model.Identity, error) {
	var u model.Identity
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,meta_full_name,meta_role,is_active,created_at,updated_at FROM identities WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.MetaFullName, &u.MetaRole, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List pages through identities for the admin user listing, newest first.
func (r *IdentityRepo) List(ctx context.Context, limit, offset int) ([]model.Identity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,password_hash,meta_full_name,meta_role,is_active,created_at,updated_at FROM identities ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Identity{}
	for rows.Next() {
		var u model.Identity
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.MetaFullName, &u.MetaRole, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetActive toggles an account on or off.  Disabled accounts fail login.
func (r *IdentityRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE identities SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
