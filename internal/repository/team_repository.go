package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/models"
)

// teamRepository implements TeamRepository
type teamRepository struct {
	db dbExecutor
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db dbExecutor) TeamRepository {
	return &teamRepository{db: db}
}

const teamColumns = `id, team_name, registration_type, field, initial_idea, telegram_group_link, program_version_id, is_active, created_at, updated_at`

func scanTeam(row interface{ Scan(...interface{}) error }) (*models.Team, error) {
	team := &models.Team{}
	err := row.Scan(
		&team.ID, &team.TeamName, &team.RegistrationType, &team.Field,
		&team.InitialIdea, &team.TelegramGroupLink, &team.ProgramVersionID,
		&team.IsActive, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return team, nil
}

// GetByID retrieves a team by ID
func (r *teamRepository) GetByID(id uuid.UUID) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := scanTeam(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("team %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// Create creates a new team
func (r *teamRepository) Create(team *models.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	now := time.Now()
	team.CreatedAt = now
	team.UpdatedAt = now
	team.IsActive = true

	query := `
		INSERT INTO teams (id, team_name, registration_type, field, initial_idea, telegram_group_link, program_version_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(query,
		team.ID, team.TeamName, team.RegistrationType, team.Field,
		team.InitialIdea, team.TelegramGroupLink, team.ProgramVersionID,
		team.IsActive, team.CreatedAt, team.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

// UpdateTelegramLink sets the team's telegram group link
func (r *teamRepository) UpdateTelegramLink(id uuid.UUID, link string) error {
	query := `UPDATE teams SET telegram_group_link = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(query, id, link, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update telegram link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetAll retrieves teams with pagination
func (r *teamRepository) GetAll(limit, offset int) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	return collectTeams(rows)
}

// SearchByName finds teams whose name contains the given fragment
func (r *teamRepository) SearchByName(name string) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE team_name ILIKE '%' || $1 || '%' ORDER BY team_name`

	rows, err := r.db.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search teams: %w", err)
	}
	defer rows.Close()

	return collectTeams(rows)
}

func collectTeams(rows *sql.Rows) ([]models.Team, error) {
	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

// AddMember adds a member to a team
func (r *teamRepository) AddMember(member *models.TeamMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	member.CreatedAt = time.Now()

	query := `
		INSERT INTO team_members (id, team_id, full_name, email, phone, is_leader, membership_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(query,
		member.ID, member.TeamID, member.FullName, member.Email,
		member.Phone, member.IsLeader, member.MembershipNumber, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

// GetMembers retrieves all members of a team
func (r *teamRepository) GetMembers(teamID uuid.UUID) ([]models.TeamMember, error) {
	query := `
		SELECT id, team_id, full_name, email, phone, is_leader, membership_number, created_at
		FROM team_members WHERE team_id = $1 ORDER BY is_leader DESC, created_at
	`

	rows, err := r.db.Query(query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		err := rows.Scan(&m.ID, &m.TeamID, &m.FullName, &m.Email, &m.Phone, &m.IsLeader, &m.MembershipNumber, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMemberByEmail finds a team member by registration email
func (r *teamRepository) GetMemberByEmail(email string) (*models.TeamMember, error) {
	query := `
		SELECT id, team_id, full_name, email, phone, is_leader, membership_number, created_at
		FROM team_members WHERE email = $1
	`

	var m models.TeamMember
	err := r.db.QueryRow(query, email).Scan(
		&m.ID, &m.TeamID, &m.FullName, &m.Email, &m.Phone, &m.IsLeader, &m.MembershipNumber, &m.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("team member with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}
	return &m, nil
}
