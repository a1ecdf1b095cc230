package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/factorylink/internal/models"
)

const profileColumns = `id, full_name, email, role, department, position, skills, password_hash, created_at, updated_at`

type ProfileStore struct {
	db Querier
}

func NewProfileStore(db Querier) *ProfileStore {
	return &ProfileStore{db: db}
}

// Create inserts a new profile row. Postgres generates the UUID and timestamps.
func (s *ProfileStore) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (full_name, email, role, department, position, skills, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + profileColumns

	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}

	created, err := scanProfile(s.db.QueryRow(ctx, query,
		p.FullName, p.Email, string(p.Role), p.Department, p.Position, skills, p.PasswordHash,
	))
	if err != nil {
		return nil, mapError(err, "insert profile")
	}
	return created, nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err, "get profile")
	}
	return p, nil
}

func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`

	p, err := scanProfile(s.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err, "get profile by email")
	}
	return p, nil
}

func (s *ProfileStore) Update(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.Profile, error) {
	b := psql.Update("profiles").
		Set("updated_at", sq.Expr("now()")).
		Where("id = ?", id)

	if patch.FullName != nil {
		b = b.Set("full_name", *patch.FullName)
	}
	if patch.Department != nil {
		b = b.Set("department", *patch.Department)
	}
	if patch.Position != nil {
		b = b.Set("position", *patch.Position)
	}
	if patch.Skills != nil {
		b = b.Set("skills", *patch.Skills)
	}

	query, args, err := b.Suffix("RETURNING " + profileColumns).ToSql()
	if err != nil {
		return nil, mapError(err, "build profile update")
	}

	p, err := scanProfile(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err, "update profile")
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var (
		p    models.Profile
		role string
	)
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Email,
		&role,
		&p.Department,
		&p.Position,
		&p.Skills,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Role = models.Role(role)
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}
