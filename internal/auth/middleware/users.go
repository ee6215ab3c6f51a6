package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

const bcryptCost = 12

// Authenticator resolves a username and password to a subject and role.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (id, role string, err error)
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // usually "student"
	Password string `json:"password,omitempty"` // plaintext on input only
}

// Users is the users table plus an optional built-in admin whose bcrypt
// hash comes from configuration.
type Users struct {
	db        *sql.DB
	adminUser string
	adminHash string
}

func NewUsers(db *sql.DB, adminUser, adminPassHash string) *Users {
	return &Users{db: db, adminUser: adminUser, adminHash: adminPassHash}
}

func (u *Users) Authenticate(ctx context.Context, username, password string) (string, string, error) {
	if username == "" || password == "" {
		return "", "", ErrInvalidCredentials
	}
	if u.adminUser != "" && username == u.adminUser && u.adminHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(u.adminHash), []byte(password)) == nil {
			return username, "admin", nil
		}
	}
	var id, role, hash string
	err := u.db.QueryRowContext(ctx,
		`SELECT id, role, password_hash FROM users WHERE username=$1`, username).Scan(&id, &role, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", "", ErrInvalidCredentials
	}
	return id, role, nil
}

// Upsert inserts or updates users by id. New users need a password; for
// existing users an empty password keeps the stored hash.
func (u *Users) Upsert(ctx context.Context, rows []User) (inserted, updated int, err error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	for _, r := range rows {
		if r.Role == "" {
			r.Role = "student"
		}
		if r.Role != "student" && r.Role != "teacher" && r.Role != "admin" {
			return inserted, updated, fmt.Errorf("invalid role: %s", r.Role)
		}
		if r.ID == "" || r.Username == "" {
			return inserted, updated, errors.New("id and username required")
		}
		var phash string
		if r.Password != "" {
			b, e := bcrypt.GenerateFromPassword([]byte(r.Password), bcryptCost)
			if e != nil {
				return inserted, updated, e
			}
			phash = string(b)
		}

		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id=$1`, r.ID).Scan(new(int)); err == nil {
			exists = true
		} else if !errors.Is(err, sql.ErrNoRows) {
			return inserted, updated, err
		}
		switch {
		case exists && phash != "":
			_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2, password_hash=$3 WHERE id=$4`,
				r.Username, r.Role, phash, r.ID)
			updated++
		case exists:
			_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2 WHERE id=$3`,
				r.Username, r.Role, r.ID)
			updated++
		default:
			if phash == "" {
				return inserted, updated, fmt.Errorf("password required for new user: %s", r.Username)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, username, password_hash, role) VALUES ($1,$2,$3,$4)`,
				r.ID, r.Username, phash, r.Role)
			inserted++
		}
		if err != nil {
			return inserted, updated, err
		}
	}
	return
}

// List returns users ordered by username, optionally filtered by role.
func (u *Users) List(ctx context.Context, role string) ([]User, error) {
	rows, err := u.db.QueryContext(ctx,
		`SELECT id, username, role FROM users WHERE ($1 = '' OR role = $1) ORDER BY username`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var x User
		if err := rows.Scan(&x.ID, &x.Username, &x.Role); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

func (u *Users) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	var stored string
	err := u.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id=$1`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	_, err = u.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), id)
	return err
}
