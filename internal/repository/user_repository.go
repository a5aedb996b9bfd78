package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/pkg/database"
)

const userColumns = "id, username, email, password_hash, role, created_at, updated_at"

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, "find user by id", query, id)
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.findOne(ctx, "find user by username", query, username)
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, "find user by email", query, email)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// List returns users matching the filter together with the total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	listQuery, args, err := buildQuery(applyUserFilter(psql.Select(userColumns).From("users u"), filter).
		OrderBy("u.id ASC").Limit(limit).Offset(offset))
	if err != nil {
		return nil, 0, err
	}
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery, args, err := buildQuery(applyUserFilter(psql.Select("COUNT(*)").From("users u"), filter))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

func applyUserFilter(q squirrel.SelectBuilder, filter models.UserFilter) squirrel.SelectBuilder {
	if filter.Username != "" {
		q = q.Where(squirrel.ILike{"u.username": containsPattern(filter.Username)})
	}
	if filter.Email != "" {
		q = q.Where(squirrel.ILike{"u.email": containsPattern(filter.Email)})
	}
	if filter.TaughtCourseTitle != "" {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM courses c WHERE c.teacher_id = u.id AND c.title ILIKE ?)",
			containsPattern(filter.TaughtCourseTitle),
		))
	}
	return q
}

// Create inserts a new user and sets its generated ID.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `INSERT INTO users (username, email, password_hash, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt).Scan(&user.ID); err != nil {
		return wrapWriteErr("create user", err)
	}
	return nil
}

// Update persists username, email and password hash.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET username = $2, email = $3, password_hash = $4, updated_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.UpdatedAt)
	if err != nil {
		return wrapWriteErr("update user", err)
	}
	return requireAffected(res, "update user")
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res, "update password")
}

// Delete removes a user. Enrollment rows and refresh tokens of the user are
// deleted and taught courses lose their teacher, all in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("delete user enrollments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE courses SET teacher_id = NULL, updated_at = $2 WHERE teacher_id = $1`, id, time.Now().UTC()); err != nil {
			return fmt.Errorf("detach taught courses: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("delete user refresh tokens: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return requireAffected(res, "delete user")
	})
}

// requireAffected returns sql.ErrNoRows when the statement touched nothing.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
