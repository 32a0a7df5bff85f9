package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/artem13815/docqa/pkg/auth"
)

const uniqueViolation = "23505"

// querier is the subset of *pgxpool.Pool the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Observer times a logical DB operation. *metrics.Prom implements it.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

// UserRepository implements auth.UserRepository backed by PostgreSQL (pgx).
// Each call is a single auto-committed statement.
type UserRepository struct {
	db   querier
	prom Observer
}

// NewUserRepository returns a repository; prom may be nil.
func NewUserRepository(db querier, prom Observer) *UserRepository {
	return &UserRepository{db: db, prom: prom}
}

func (r *UserRepository) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	err := r.observe("users.create", func() error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO users (email, hashed_password)
			VALUES ($1, $2)
		`, user.Email, user.PasswordHash)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	var (
		user     auth.User
		notFound bool
	)
	err := r.observe("users.get_by_email", func() error {
		err := r.db.QueryRow(ctx, `
			SELECT email, hashed_password
			FROM users WHERE email = $1
		`, email).Scan(&user.Email, &user.PasswordHash)
		// a missing user is a normal outcome, not a DB error
		if errors.Is(err, pgx.ErrNoRows) {
			notFound = true
			return nil
		}
		return err
	})
	if err != nil {
		return auth.User{}, err
	}
	if notFound {
		return auth.User{}, auth.ErrNotFound
	}
	return user, nil
}
