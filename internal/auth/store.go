package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ragchat/internal/db"
)

// bcryptCost trades hashing speed for resistance to offline cracking.
const bcryptCost = 12

var (
	// ErrUserExists is returned when a username or email is taken.
	ErrUserExists = errors.New("username or email already exists")
	// ErrUserNotFound is returned when no user matches the identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrBadCredentials is returned for a wrong username or password.
	ErrBadCredentials = errors.New("invalid username or password")
)

// User is an account row. The password hash never leaves this package.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`

	hashedPassword string
}

// Store persists user accounts.
type Store struct {
	db *db.DB
}

// NewStore creates a user store over the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create registers a new user with a bcrypt-hashed password.
func (s *Store) Create(ctx context.Context, username, email, password string) (*User, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`,
		username, email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if exists > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, hashed_password) VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

// ByIdentifier looks a user up by username or email.
func (s *Store) ByIdentifier(ctx context.Context, identifier string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, hashed_password, created_at
		 FROM users WHERE username = ? OR email = ?`,
		identifier, identifier)

	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.hashedPassword, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// Authenticate verifies a username/password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.ByIdentifier(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.hashedPassword), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// UpdatePassword replaces the password of the user matching the
// identifier (username or email).
func (s *Store) UpdatePassword(ctx context.Context, identifier, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = ?, updated_at = datetime('now')
		 WHERE username = ? OR email = ?`,
		string(hash), identifier, identifier)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user matching the identifier. Owned files and
// projects cascade.
func (s *Store) Delete(ctx context.Context, identifier string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE username = ? OR email = ?`, identifier, identifier)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
