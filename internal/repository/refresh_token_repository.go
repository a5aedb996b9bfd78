package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/pkg/database"
)

const refreshTokenColumns = "id, user_id, token, user_role, created_at, expires_at"

// RefreshTokenRepository is the ledger of currently valid refresh tokens.
type RefreshTokenRepository struct {
	db *sqlx.DB
}

// NewRefreshTokenRepository constructs a RefreshTokenRepository.
func NewRefreshTokenRepository(db *sqlx.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create persists a ledger row and sets its generated ID.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return insertRefreshToken(ctx, r.db, token)
}

// FindByToken returns the ledger row holding the exact token string.
func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token = $1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// Rotate deletes the row oldID and inserts next in one transaction. When the
// old row is already gone, nothing is written and sql.ErrNoRows is returned,
// so a refresh token can be exchanged at most once even under concurrency.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID int64, next *models.RefreshToken) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID)
		if err != nil {
			return fmt.Errorf("delete rotated refresh token: %w", err)
		}
		if err := requireAffected(res, "delete rotated refresh token"); err != nil {
			return err
		}
		return insertRefreshToken(ctx, tx, next)
	})
}

// Delete removes one ledger row.
func (r *RefreshTokenRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return requireAffected(res, "delete refresh token")
}

// DeleteByUser removes every ledger row of a user and reports how many went.
func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user refresh tokens: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpired purges rows whose expiry is before the cutoff.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return res.RowsAffected()
}

func insertRefreshToken(ctx context.Context, q sqlx.QueryerContext, token *models.RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (user_id, token, user_role, created_at, expires_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := q.QueryRowxContext(ctx, query, token.UserID, token.Token, token.UserRole, token.CreatedAt, token.ExpiresAt).Scan(&token.ID); err != nil {
		return wrapWriteErr("create refresh token", err)
	}
	return nil
}
