package repository

import (
	"context"
	"database/sql"

	"github.com/sportmaps/sportmaps-server/internal/model"
)

// SchoolRepo reads the public school directory.
type SchoolRepo struct{ DB *sql.DB }

func NewSchoolRepo(db *sql.DB) *SchoolRepo { return &SchoolRepo{DB: db} }

const schoolColumns = "id,name,description,city,address,sports,rating,verified,created_at"

// List returns schools, optionally filtered by city and sport substring,
// ordered by rating.
func (r *SchoolRepo) List(ctx context.Context, city, sport string, limit int) ([]model.School, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := "SELECT " + schoolColumns + " FROM schools WHERE 1=1"
	args := []interface{}{}
	if city != "" {
		query += " AND city=?"
		args = append(args, city)
	}
	if sport != "" {
		query += " AND sports LIKE ?"
		args = append(args, "%"+sport+"%")
	}
	query += " ORDER BY rating DESC, name ASC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.School{}
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches one school; ErrNotFound when absent.
func (r *SchoolRepo) GetByID(ctx context.Context, id string) (model.School, error) {
	s, err := scanSchool(r.DB.QueryRowContext(ctx,
		"SELECT "+schoolColumns+" FROM schools WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.School{}, ErrNotFound
	}
	return s, err
}

func scanSchool(row rowScanner) (model.School, error) {
	var (
		s    model.School
		desc sql.NullString
		addr sql.NullString
	)
	err := row.Scan(&s.ID, &s.Name, &desc, &s.City, &addr, &s.Sports, &s.Rating, &s.Verified, &s.CreatedAt)
	if err != nil {
		return model.School{}, err
	}
	if desc.Valid {
		s.Description = &desc.String
	}
	if addr.Valid {
		s.Address = &addr.String
	}
	return s, nil
}
