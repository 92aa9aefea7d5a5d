package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/repository"
)

const (
	minTeamSize = 3
	maxTeamSize = 6
)

type registrationService struct {
	repos *repository.Repositories
}

func newRegistrationService(repos *repository.Repositories) RegistrationService {
	return &registrationService{repos: repos}
}

// RegisterTeam validates and persists a new team with its members
func (s *registrationService) RegisterTeam(req TeamRegistrationRequest) (*TeamDetail, error) {
	if req.RegistrationType != models.RegistrationTeamWithIdea && req.RegistrationType != models.RegistrationTeamNoIdea {
		return nil, apperrors.ValidationError(
			fmt.Sprintf("registration_type must be %q or %q", models.RegistrationTeamWithIdea, models.RegistrationTeamNoIdea), nil)
	}
	if req.RegistrationType == models.RegistrationTeamWithIdea && strings.TrimSpace(req.InitialIdea) == "" {
		return nil, apperrors.ValidationError("initial_idea is required for a team registering with an idea", nil)
	}
	if err := s.validateMembers(req.Members); err != nil {
		return nil, err
	}

	version, err := s.activeVersion()
	if err != nil {
		return nil, err
	}

	var detail *TeamDetail
	err = s.repos.Tx.WithTransaction(func(tx *repository.Repositories) error {
		team := &models.Team{
			TeamName:         strings.TrimSpace(req.TeamName),
			RegistrationType: req.RegistrationType,
			Field:            req.Field,
			InitialIdea:      req.InitialIdea,
			ProgramVersionID: version.ID,
			IsActive:         true,
		}
		if err := tx.Team.Create(team); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}

		members := make([]models.TeamMember, 0, len(req.Members))
		for _, m := range req.Members {
			member := models.TeamMember{
				TeamID:           team.ID,
				FullName:         m.FullName,
				Email:            strings.ToLower(strings.TrimSpace(m.Email)),
				Phone:            m.Phone,
				IsLeader:         m.IsLeader,
				MembershipNumber: m.MembershipNumber,
			}
			if err := tx.Team.AddMember(&member); err != nil {
				return fmt.Errorf("failed to add team member: %w", err)
			}
			members = append(members, member)
		}

		detail = &TeamDetail{Team: team, Members: members}
		return nil
	})
	if err != nil {
		return nil, apperrors.DatabaseError("failed to register team", err)
	}
	return detail, nil
}

func (s *registrationService) validateMembers(members []MemberInput) error {
	if len(members) < minTeamSize || len(members) > maxTeamSize {
		return apperrors.ValidationError(
			fmt.Sprintf("a team needs between %d and %d members, got %d", minTeamSize, maxTeamSize, len(members)), nil)
	}

	leaders := 0
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		email := strings.ToLower(strings.TrimSpace(m.Email))
		if seen[email] {
			return apperrors.ValidationError(fmt.Sprintf("duplicate member email %s", email), nil)
		}
		seen[email] = true
		if m.IsLeader {
			leaders++
		}

		existing, err := s.repos.Team.GetMemberByEmail(email)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.DatabaseError("failed to check member email", err)
		}
		if existing != nil {
			return apperrors.Conflict(fmt.Sprintf("email %s is already registered with another team", email), nil)
		}
	}

	if leaders != 1 {
		return apperrors.ValidationError("a team needs exactly one leader", nil)
	}
	return nil
}

func (s *registrationService) GetTeam(id uuid.UUID) (*TeamDetail, error) {
	team, err := s.repos.Team.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("team not found", err)
		}
		return nil, apperrors.DatabaseError("failed to load team", err)
	}

	members, err := s.repos.Team.GetMembers(id)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load team members", err)
	}

	return &TeamDetail{Team: team, Members: members}, nil
}

func (s *registrationService) ListTeams(limit, offset int) ([]models.Team, error) {
	teams, err := s.repos.Team.GetAll(normalizeLimit(limit), offset)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list teams", err)
	}
	return teams, nil
}

func (s *registrationService) SearchTeams(name string) ([]models.Team, error) {
	teams, err := s.repos.Team.SearchByName(name)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to search teams", err)
	}
	return teams, nil
}

func (s *registrationService) UpdateTelegramLink(teamID uuid.UUID, link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return apperrors.ValidationError("telegram link must not be empty", nil)
	}
	if _, err := s.GetTeam(teamID); err != nil {
		return err
	}
	if err := s.repos.Team.UpdateTelegramLink(teamID, link); err != nil {
		return apperrors.DatabaseError("failed to update telegram link", err)
	}
	return nil
}

// RegisterIndividual persists a solo registrant
func (s *registrationService) RegisterIndividual(req IndividualRegistrationRequest) (*models.Individual, error) {
	if req.RegistrationType != models.RegistrationIndividualWithIdea && req.RegistrationType != models.RegistrationIndividualNoIdea {
		return nil, apperrors.ValidationError(
			fmt.Sprintf("registration_type must be %q or %q", models.RegistrationIndividualWithIdea, models.RegistrationIndividualNoIdea), nil)
	}
	if req.RegistrationType == models.RegistrationIndividualWithIdea && strings.TrimSpace(req.ProjectIdea) == "" {
		return nil, apperrors.ValidationError("project_idea is required for an individual registering with an idea", nil)
	}

	version, err := s.activeVersion()
	if err != nil {
		return nil, err
	}

	individual := &models.Individual{
		RegistrationType: req.RegistrationType,
		FullName:         req.FullName,
		MembershipNumber: req.MembershipNumber,
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            req.Phone,
		TechnicalSkills:  req.TechnicalSkills,
		Interests:        req.Interests,
		ExperienceLevel:  req.ExperienceLevel,
		PreferredField:   req.PreferredField,
		ProjectIdea:      req.ProjectIdea,
		ProgramVersionID: version.ID,
	}

	if err := s.repos.Individual.Create(individual); err != nil {
		return nil, apperrors.DatabaseError("failed to register individual", err)
	}
	return individual, nil
}

func (s *registrationService) ListIndividuals(limit, offset int) ([]models.Individual, error) {
	individuals, err := s.repos.Individual.GetAll(normalizeLimit(limit), offset)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list individuals", err)
	}
	return individuals, nil
}

func (s *registrationService) ListUnassigned() ([]models.Individual, error) {
	individuals, err := s.repos.Individual.GetUnassigned()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list unassigned individuals", err)
	}
	return individuals, nil
}

// AssignIndividuals creates a team from unassigned individuals. The whole
// grouping commits atomically: team creation, member rows, and assignment
// flags succeed or fail together.
func (s *registrationService) AssignIndividuals(req AssignTeamRequest) (*TeamDetail, error) {
	if len(req.IndividualIDs) < minTeamSize || len(req.IndividualIDs) > maxTeamSize {
		return nil, apperrors.ValidationError(
			fmt.Sprintf("a team needs between %d and %d members, got %d", minTeamSize, maxTeamSize, len(req.IndividualIDs)), nil)
	}

	individuals, err := s.repos.Individual.GetByIDs(req.IndividualIDs)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load individuals", err)
	}
	if len(individuals) != len(req.IndividualIDs) {
		return nil, apperrors.NotFound("one or more individuals do not exist", nil)
	}
	for _, ind := range individuals {
		if ind.IsAssigned {
			return nil, apperrors.Conflict(fmt.Sprintf("individual %s is already assigned to a team", ind.ID), nil)
		}
	}

	version, err := s.activeVersion()
	if err != nil {
		return nil, err
	}

	var detail *TeamDetail
	err = s.repos.Tx.WithTransaction(func(tx *repository.Repositories) error {
		team := &models.Team{
			TeamName:         strings.TrimSpace(req.TeamName),
			RegistrationType: models.RegistrationTeamNoIdea,
			Field:            req.Field,
			ProgramVersionID: version.ID,
			IsActive:         true,
		}
		if err := tx.Team.Create(team); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}

		members := make([]models.TeamMember, 0, len(individuals))
		for i, ind := range individuals {
			member := models.TeamMember{
				TeamID:           team.ID,
				FullName:         ind.FullName,
				Email:            ind.Email,
				Phone:            ind.Phone,
				IsLeader:         i == 0, // first selected individual leads
				MembershipNumber: ind.MembershipNumber,
			}
			if err := tx.Team.AddMember(&member); err != nil {
				return fmt.Errorf("failed to add team member: %w", err)
			}
			if err := tx.Individual.MarkAssigned(ind.ID, team.ID); err != nil {
				return fmt.Errorf("failed to mark individual assigned: %w", err)
			}
			members = append(members, member)
		}

		detail = &TeamDetail{Team: team, Members: members}
		return nil
	})
	if err != nil {
		return nil, apperrors.DatabaseError("failed to assign individuals", err)
	}
	return detail, nil
}

func (s *registrationService) activeVersion() (*models.ProgramVersion, error) {
	version, err := s.repos.ProgramVersion.GetActive()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict("no active program version; registrations are closed", err)
		}
		return nil, apperrors.DatabaseError("failed to load active program version", err)
	}
	return version, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
