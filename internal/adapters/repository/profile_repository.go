package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/ports"
)

const defaultListLimit = 50

// ProfileRepositoryImpl implements the ProfileRepository interface on any
// sqlx database (postgres in production, sqlite for local runs and tests)
type ProfileRepositoryImpl struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewProfileRepository creates a new style profile repository
func NewProfileRepository(db *sqlx.DB) *ProfileRepositoryImpl {
	return &ProfileRepositoryImpl{db: db, now: time.Now}
}

var _ ports.ProfileRepository = (*ProfileRepositoryImpl)(nil)

type profileRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Document  string    `db:"document"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r profileRow) toEntity() (*entities.StoredProfile, error) {
	p := &entities.StoredProfile{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(r.Document), &p.Document); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", r.ID, err)
	}
	if p.Document == nil {
		p.Document = map[string]any{}
	}
	return p, nil
}

// EnsureSchema creates the profile table when migrations are not used.
func (r *ProfileRepositoryImpl) EnsureSchema(ctx context.Context) error {
	docType := "TEXT"
	if r.db.DriverName() == "postgres" {
		docType = "JSONB"
	}

	query := `
		CREATE TABLE IF NOT EXISTS style_profiles (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			document ` + docType + ` NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure profile schema: %w", err)
	}
	return nil
}

func (r *ProfileRepositoryImpl) Get(ctx context.Context, id string) (*entities.StoredProfile, error) {
	query := r.db.Rebind(`
		SELECT id, name, document, created_at, updated_at
		FROM style_profiles
		WHERE id = ?`)

	var row profileRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}

	return row.toEntity()
}

// Put inserts or replaces the profile. A missing ID is generated; the
// creation time of an existing profile is kept.
func (r *ProfileRepositoryImpl) Put(ctx context.Context, profile *entities.StoredProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.Document == nil {
		profile.Document = map[string]any{}
	}

	doc, err := json.Marshal(profile.Document)
	if err != nil {
		return fmt.Errorf("encode profile document: %w", err)
	}

	now := r.now().UTC()
	query := r.db.Rebind(`
		INSERT INTO style_profiles (id, name, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			updated_at = excluded.updated_at`)

	if _, err := r.db.ExecContext(ctx, query, profile.ID, profile.Name, string(doc), now, now); err != nil {
		return fmt.Errorf("put profile: %w", err)
	}

	stored, err := r.Get(ctx, profile.ID)
	if err != nil {
		return err
	}
	profile.CreatedAt = stored.CreatedAt
	profile.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *ProfileRepositoryImpl) Delete(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM style_profiles WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepositoryImpl) List(ctx context.Context, filter ports.ProfileFilter) ([]*entities.StoredProfile, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := r.db.Rebind(`
		SELECT id, name, document, created_at, updated_at
		FROM style_profiles
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?`)

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	profiles := make([]*entities.StoredProfile, 0, len(rows))
	for _, row := range rows {
		p, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
