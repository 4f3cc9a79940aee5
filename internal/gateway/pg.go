package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saeid-a/FitProfileSync/internal/store"
	"github.com/saeid-a/FitProfileSync/pkg/utils"
)

// PgAuthenticator verifies and creates accounts against Postgres. It is
// stateless; per-client session state lives in Session.
type PgAuthenticator struct {
	db store.DBTX
}

func NewPgAuthenticator(db store.DBTX) *PgAuthenticator {
	return &PgAuthenticator{db: db}
}

func normalizeEmail(email string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("%w: invalid email", store.ErrAuthentication)
	}
	return strings.ToLower(parsed.Address), nil
}

func (a *PgAuthenticator) Authenticate(ctx context.Context, email, password string) (store.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return store.Identity{}, err
	}

	query := `SELECT id, email, password_hash FROM accounts WHERE email = $1`
	var id, storedEmail, hash string
	if err := a.db.QueryRow(ctx, query, email).Scan(&id, &storedEmail, &hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Identity{}, fmt.Errorf("%w: invalid email or password", store.ErrAuthentication)
		}
		return store.Identity{}, fmt.Errorf("lookup account: %w: %v", store.ErrNetwork, err)
	}

	if !utils.CheckPassword(password, hash) {
		return store.Identity{}, fmt.Errorf("%w: invalid email or password", store.ErrAuthentication)
	}
	return store.Identity{ID: id, Email: storedEmail}, nil
}

func (a *PgAuthenticator) CreateAccount(ctx context.Context, email, password string) (store.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return store.Identity{}, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return store.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	query := `INSERT INTO accounts (id, email, password_hash) VALUES ($1, $2, $3)`
	if _, err := a.db.Exec(ctx, query, id, email, hash); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return store.Identity{}, fmt.Errorf("%w: email already registered", store.ErrAuthentication)
		}
		return store.Identity{}, fmt.Errorf("create account: %w: %v", store.ErrNetwork, err)
	}
	return store.Identity{ID: id, Email: email}, nil
}

// CreatePasswordReset records a reset token for the account. Delivery is out
// of scope; the token is logged so an operator can relay it.
func (a *PgAuthenticator) CreatePasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	query := `SELECT id FROM accounts WHERE email = $1`
	var accountID string
	if err := a.db.QueryRow(ctx, query, email).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: unknown email", store.ErrAuthentication)
		}
		return fmt.Errorf("lookup account: %w: %v", store.ErrNetwork, err)
	}

	token := uuid.NewString()
	insert := `INSERT INTO password_resets (token, account_id) VALUES ($1, $2)`
	if _, err := a.db.Exec(ctx, insert, token, accountID); err != nil {
		return fmt.Errorf("create password reset: %w: %v", store.ErrNetwork, err)
	}
	log.Printf("password reset issued for account %s", accountID)
	return nil
}
