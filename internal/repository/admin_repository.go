package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/models"
)

// adminRepository implements AdminRepository
type adminRepository struct {
	db dbExecutor
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db dbExecutor) AdminRepository {
	return &adminRepository{db: db}
}

const adminColumns = `id, username, email, password_hash, full_name, evaluation_weight, is_active, is_superadmin, created_at`

func scanAdmin(row interface{ Scan(...interface{}) error }) (*models.Admin, error) {
	admin := &models.Admin{}
	err := row.Scan(
		&admin.ID, &admin.Username, &admin.Email, &admin.PasswordHash,
		&admin.FullName, &admin.EvaluationWeight, &admin.IsActive,
		&admin.IsSuperAdmin, &admin.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// GetByID retrieves an admin by ID
func (r *adminRepository) GetByID(id uuid.UUID) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

	admin, err := scanAdmin(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("admin %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

// GetByUsername retrieves an admin by username
func (r *adminRepository) GetByUsername(username string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE username = $1`

	admin, err := scanAdmin(r.db.QueryRow(query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("admin %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

// ExistsByUsernameOrEmail reports whether any admin already uses the username or email
func (r *adminRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM admins WHERE username = $1 OR email = $2)`

	var exists bool
	if err := r.db.QueryRow(query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check admin existence: %w", err)
	}
	return exists, nil
}

// Create creates a new admin
func (r *adminRepository) Create(admin *models.Admin) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.CreatedAt = time.Now()

	query := `
		INSERT INTO admins (id, username, email, password_hash, full_name, evaluation_weight, is_active, is_superadmin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(query,
		admin.ID, admin.Username, admin.Email, admin.PasswordHash,
		admin.FullName, admin.EvaluationWeight, admin.IsActive,
		admin.IsSuperAdmin, admin.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// UpdateWeight updates an admin's evaluation weight
func (r *adminRepository) UpdateWeight(id uuid.UUID, weight float64) error {
	query := `UPDATE admins SET evaluation_weight = $2 WHERE id = $1`

	result, err := r.db.Exec(query, id, weight)
	if err != nil {
		return fmt.Errorf("failed to update admin weight: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("admin %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetAll retrieves all admins
func (r *adminRepository) GetAll() ([]models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins ORDER BY created_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, *admin)
	}
	return admins, rows.Err()
}

// Count returns the number of registered admins
func (r *adminRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
