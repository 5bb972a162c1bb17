package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sportmaps/sportmaps-server/internal/model"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
)

// ProfileRepo persists rows of the 'profiles' table, keyed by identity id.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileColumns = "id,full_name,phone,role,avatar_url,bio,date_of_birth,sportmaps_points,subscription_tier,created_at,updated_at"

// Fetch returns the profile for an identity, or (nil, nil) when no row
// exists.  Absence is the expected state for a freshly signed-up identity,
// not a fault, so it is not reported as an error.
func (r *ProfileRepo) Fetch(ctx context.Context, id string) (*model.Profile, error) {
	p, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a profile for an identity.  The check-then-insert is
// best-effort, not atomic: when two callers race (concurrent tabs), the
// loser's insert hits the primary-key constraint and resolves by re-reading
// the winner's row, so both callers observe the same single profile.
func (r *ProfileRepo) Create(ctx context.Context, id string, fields model.ProfileFields) (*model.Profile, error) {
	if existing, err := r.Fetch(ctx, id); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	fullName := "Usuario"
	if fields.FullName != nil && *fields.FullName != "" {
		fullName = *fields.FullName
	}
	role := rbac.RoleAthlete
	if fields.Role != nil && fields.Role.Valid() {
		role = *fields.Role
	}
	tier := model.TierFree
	if fields.SubscriptionTier != nil && *fields.SubscriptionTier != "" {
		tier = *fields.SubscriptionTier
	}

	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO profiles (id, full_name, phone, role, avatar_url, bio, date_of_birth, subscription_tier) VALUES (?,?,?,?,?,?,?,?)",
		id, fullName, fields.Phone, role.String(), fields.AvatarURL, fields.Bio, fields.DateOfBirth, tier)
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "1062") {
		return nil, err
	}
	// Read back the row we (or a concurrent creator) just wrote.
	p, err := r.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

// Update applies a partial update and stamps updated_at.  Nil fields are
// left untouched.
func (r *ProfileRepo) Update(ctx context.Context, id string, fields model.ProfileFields) (*model.Profile, error) {
	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)
	if fields.FullName != nil {
		set = append(set, "full_name=?")
		args = append(args, *fields.FullName)
	}
	if fields.Phone != nil {
		set = append(set, "phone=?")
		args = append(args, *fields.Phone)
	}
	if fields.Role != nil {
		set = append(set, "role=?")
		args = append(args, fields.Role.String())
	}
	if fields.AvatarURL != nil {
		set = append(set, "avatar_url=?")
		args = append(args, *fields.AvatarURL)
	}
	if fields.Bio != nil {
		set = append(set, "bio=?")
		args = append(args, *fields.Bio)
	}
	if fields.DateOfBirth != nil {
		set = append(set, "date_of_birth=?")
		args = append(args, *fields.DateOfBirth)
	}
	if fields.SubscriptionTier != nil {
		set = append(set, "subscription_tier=?")
		args = append(args, *fields.SubscriptionTier)
	}
	set = append(set, "updated_at=NOW()")
	args = append(args, id)

	if _, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
		return nil, err
	}
	p, err := r.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

// AddPoints adjusts the loyalty balance, clamped at zero.
func (r *ProfileRepo) AddPoints(ctx context.Context, id string, delta int) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET sportmaps_points=GREATEST(0, sportmaps_points+?), updated_at=NOW() WHERE id=?",
		delta, id)
	return err
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *ProfileRepo) scanOne(row rowScanner) (*model.Profile, error) {
	var (
		p     model.Profile
		role  string
		phone sql.NullString
		av    sql.NullString
		bio   sql.NullString
		dob   sql.NullTime
	)
	err := row.Scan(&p.ID, &p.FullName, &phone, &role, &av, &bio, &dob,
		&p.SportmapsPoints, &p.SubscriptionTier, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Role = rbac.ParseRole(role)
	if phone.Valid {
		p.Phone = &phone.String
	}
	if av.Valid {
		p.AvatarURL = &av.String
	}
	if bio.Valid {
		p.Bio = &bio.String
	}
	if dob.Valid {
		t := dob.Time
		p.DateOfBirth = &t
	}
	return &p, nil
}
