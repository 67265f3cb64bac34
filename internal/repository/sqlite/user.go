package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements repository.UserRepository on the shared connection pool.
type UserRepo struct {
	conn *sql.DB
}

// NewUserRepo creates a UserRepo backed by db's connection pool.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{conn: db.conn}
}

// Create inserts a new user and fills in the generated ID and timestamps.
//
// The UNIQUE constraint on email is the last line of defence against two
// concurrent registrations with the same address: whichever insert loses the
// race gets a Conflict error here, and the service reports it the same way as
// the pre-check ("email already taken").
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (name, email, password, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "email already taken")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	// AUTOINCREMENT assigned the id; read it back into the caller's struct.
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by primary key.
// Returns apperror.ErrNotFound if no user exists with that id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their unique email address.
// Returns apperror.ErrNotFound if no account uses that email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}

	return &u, nil
}
