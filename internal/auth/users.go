package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type UserRepo struct{ DB *pgxpool.Pool }

// Register: hash bcrypt + insert. Role admin hanya boleh saat tabel masih
// kosong (bootstrap); selain itu dipaksa jadi user biasa.
func (r *UserRepo) Register(ctx context.Context, email, password, role string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if role != RoleAdmin {
		role = RoleUser
	}
	if role == RoleAdmin {
		var n int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
			return nil, err
		}
		if n > 0 {
			role = RoleUser
		}
	}

	u := User{ID: uuid.NewString(), Email: email, Role: role}
	err = tx.QueryRow(ctx, `
		INSERT INTO users(id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		u.ID, u.Email, string(hash), u.Role,
	).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate: balikan error yang sama utk email tak dikenal maupun password
// salah, jangan bocorkan mana yang keliru.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var u User
	var hash string
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Email, &hash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}
