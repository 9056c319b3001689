// database/db.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jury-dashboard/config"
	"jury-dashboard/models"

	_ "github.com/lib/pq"
)

var ErrAdminNotFound = errors.New("admin not found")

func Connect(cfg config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	return db, nil
}

func InitDB(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS admins (
            id SERIAL PRIMARY KEY,
            username VARCHAR(50) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            email VARCHAR(100) UNIQUE NOT NULL,
            role VARCHAR(20) DEFAULT 'admin',
            last_login TIMESTAMP,
            created_at TIMESTAMP DEFAULT NOW(),
            is_active BOOLEAN DEFAULT TRUE
        )
    `)
	return err
}

// AdminRepository reads and writes dashboard administrators.
type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindActive looks an active admin up by username or email.
func (r *AdminRepository) FindActive(ctx context.Context, login string) (models.AdminAccount, error) {
	var a models.AdminAccount
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, `
        SELECT id, username, email, password_hash, role, last_login, is_active
        FROM admins
        WHERE (username = $1 OR email = $1) AND is_active = true
    `, login).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &lastLogin, &a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrAdminNotFound
	}
	if err != nil {
		return a, err
	}
	if lastLogin.Valid {
		a.LastLogin = &lastLogin.Time
	}
	return a, nil
}

func (r *AdminRepository) TouchLastLogin(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, "UPDATE admins SET last_login = NOW() WHERE id = $1", id)
	return err
}

// Create inserts a new admin and returns its id.
func (r *AdminRepository) Create(ctx context.Context, a models.AdminAccount) (int, error) {
	role := a.Role
	if role == "" {
		role = "admin"
	}
	var id int
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO admins (username, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, a.Username, a.Email, a.PasswordHash, role).Scan(&id)
	return id, err
}
