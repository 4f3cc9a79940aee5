package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saeid-a/FitProfileSync/internal/models"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx alike.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRemoteStore is the authoritative profile record store.
type PostgresRemoteStore struct {
	db DBTX
}

func NewPostgresRemoteStore(db DBTX) *PostgresRemoteStore {
	return &PostgresRemoteStore{db: db}
}

func (r *PostgresRemoteStore) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, email, age, height, weight, gender, goal, activity_level, onboarding_completed
		FROM profiles
		WHERE id = $1
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Age,
		&profile.Height,
		&profile.Weight,
		&profile.Gender,
		&profile.Goal,
		&profile.ActivityLevel,
		&profile.OnboardingCompleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get profile %s: %w: %v", id, ErrNetwork, err)
	}
	return &profile, nil
}

func (r *PostgresRemoteStore) Set(ctx context.Context, id string, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, age, height, weight, gender, goal, activity_level, onboarding_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
			age = EXCLUDED.age,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			gender = EXCLUDED.gender,
			goal = EXCLUDED.goal,
			activity_level = EXCLUDED.activity_level,
			onboarding_completed = EXCLUDED.onboarding_completed,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		id,
		profile.Email,
		profile.Age,
		profile.Height,
		profile.Weight,
		profile.Gender,
		profile.Goal,
		profile.ActivityLevel,
		profile.OnboardingCompleted,
	)
	if err != nil {
		return fmt.Errorf("set profile %s: %w: %v", id, ErrNetwork, err)
	}
	return nil
}

// Merge updates the editable fields only; id, email and the onboarding flag
// stay untouched.
func (r *PostgresRemoteStore) Merge(ctx context.Context, id string, patch ProfilePatch) error {
	query := `
		UPDATE profiles
		SET age = $1,
			height = $2,
			weight = $3,
			goal = $4,
			activity_level = $5,
			updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query,
		patch.Age,
		patch.Height,
		patch.Weight,
		patch.Goal,
		patch.ActivityLevel,
		id,
	)
	if err != nil {
		return fmt.Errorf("merge profile %s: %w: %v", id, ErrNetwork, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return nil
}
