package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"
	"github.com/openboard-dev/openboard/internal/domain"
	internal_errors "github.com/openboard-dev/openboard/internal/errors"
)

// =========================================================================
// Public Methods (satisfy the service.AuthStorage interface)
// =========================================================================

// SaveUser inserts a new user and returns the assigned id. Duplicate email
// or username comes back as 409.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(tx, user)
		return err
	})
	return id, err
}

// User fetches a user by email. It uses the main connection pool; no
// transaction is needed for a single read.
func (s *Storage) User(email domain.Email) (domain.User, error) {
	return s.user(s.db, email)
}

// UserByUsername fetches a user by username, used to resolve public board
// URLs of the form /u/{username}/{slug}.
func (s *Storage) UserByUsername(username domain.Username) (domain.User, error) {
	return s.userByUsername(s.db, username)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) (domain.UserId, error) {
	var id int64
	err := q.QueryRow(
		"INSERT INTO users(email, username, password_hash) VALUES($1, $2, $3) RETURNING id",
		user.Email, user.Username, user.PassHash).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Email or username already taken", StatusCode: http.StatusConflict}
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) user(q Querier, email domain.Email) (domain.User, error) {
	var user domain.User
	err := q.QueryRow(
		"SELECT id, email, username, password_hash, (created_at at time zone 'utc') FROM users WHERE email = $1",
		email).Scan(&user.Id, &user.Email, &user.Username, &user.PassHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) userByUsername(q Querier, username domain.Username) (domain.User, error) {
	var user domain.User
	err := q.QueryRow(
		"SELECT id, email, username, password_hash, (created_at at time zone 'utc') FROM users WHERE username = $1",
		username).Scan(&user.Id, &user.Email, &user.Username, &user.PassHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}
