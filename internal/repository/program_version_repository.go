package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/models"
)

// programVersionRepository implements ProgramVersionRepository
type programVersionRepository struct {
	db dbExecutor
}

// NewProgramVersionRepository creates a new program version repository
func NewProgramVersionRepository(db dbExecutor) ProgramVersionRepository {
	return &programVersionRepository{db: db}
}

// GetActive retrieves the currently active program version
func (r *programVersionRepository) GetActive() (*models.ProgramVersion, error) {
	query := `
		SELECT id, version_number, version_name, is_active, created_at
		FROM program_versions WHERE is_active = true
		ORDER BY version_number DESC LIMIT 1
	`

	v := &models.ProgramVersion{}
	err := r.db.QueryRow(query).Scan(&v.ID, &v.VersionNumber, &v.VersionName, &v.IsActive, &v.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("active program version: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active program version: %w", err)
	}
	return v, nil
}

// Create deactivates all prior versions and inserts the new one as active
func (r *programVersionRepository) Create(v *models.ProgramVersion) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.IsActive = true
	v.CreatedAt = time.Now()

	if _, err := r.db.Exec(`UPDATE program_versions SET is_active = false`); err != nil {
		return fmt.Errorf("failed to deactivate program versions: %w", err)
	}

	query := `
		INSERT INTO program_versions (id, version_number, version_name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(query, v.ID, v.VersionNumber, v.VersionName, v.IsActive, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create program version: %w", err)
	}
	return nil
}

// GetAll retrieves all program versions, newest first
func (r *programVersionRepository) GetAll() ([]models.ProgramVersion, error) {
	query := `
		SELECT id, version_number, version_name, is_active, created_at
		FROM program_versions ORDER BY version_number DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query program versions: %w", err)
	}
	defer rows.Close()

	var versions []models.ProgramVersion
	for rows.Next() {
		var v models.ProgramVersion
		if err := rows.Scan(&v.ID, &v.VersionNumber, &v.VersionName, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan program version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
