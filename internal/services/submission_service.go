package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/repository"
)

// minTechnicalDescription is the minimum technical description length in
// characters (runes, not bytes)
const minTechnicalDescription = 1000

type submissionService struct {
	repos *repository.Repositories
}

func newSubmissionService(repos *repository.Repositories) SubmissionService {
	return &submissionService{repos: repos}
}

// Create registers a project submission keyed by a team member's email.
// A team resubmitting within the same edition gets an incremented version.
func (s *submissionService) Create(req SubmissionRequest) (*models.Submission, error) {
	length := utf8.RuneCountInString(req.TechnicalDescription)
	if length < minTechnicalDescription {
		return nil, apperrors.ValidationError(
			fmt.Sprintf("technical description must be at least %d characters, got %d", minTechnicalDescription, length), nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.MemberEmail))
	member, err := s.repos.Team.GetMemberByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("no registered team member with email %s", email), err)
		}
		return nil, apperrors.DatabaseError("failed to look up team member", err)
	}

	version, err := s.repos.ProgramVersion.GetActive()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict("no active program version; submissions are closed", err)
		}
		return nil, apperrors.DatabaseError("failed to load active program version", err)
	}

	prior, err := s.repos.Submission.CountByTeamAndVersion(member.TeamID, version.ID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to count prior submissions", err)
	}

	submission := &models.Submission{
		TeamID:               member.TeamID,
		ProgramVersionID:     version.ID,
		SubmissionVersion:    prior + 1,
		Title:                strings.TrimSpace(req.Title),
		ProblemStatement:     req.ProblemStatement,
		TechnicalDescription: req.TechnicalDescription,
		ScientificReference:  req.ScientificReference,
		Field:                req.Field,
		IsComplete:           true,
		CharacterCount:       length,
	}

	if err := s.repos.Submission.Create(submission); err != nil {
		return nil, apperrors.DatabaseError("failed to create submission", err)
	}
	return submission, nil
}

func (s *submissionService) Get(id uuid.UUID) (*models.Submission, error) {
	submission, err := s.repos.Submission.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("submission not found", err)
		}
		return nil, apperrors.DatabaseError("failed to load submission", err)
	}
	return submission, nil
}

func (s *submissionService) List(filters repository.SubmissionFilters) ([]models.Submission, error) {
	filters.Limit = normalizeLimit(filters.Limit)
	submissions, err := s.repos.Submission.GetAll(filters)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list submissions", err)
	}
	return submissions, nil
}

func (s *submissionService) GetByTeam(teamID uuid.UUID) ([]models.Submission, error) {
	submissions, err := s.repos.Submission.GetByTeam(teamID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list team submissions", err)
	}
	return submissions, nil
}

// AttachFiles records stored attachment paths. Empty paths leave the
// existing value untouched so attachments can be uploaded one at a time.
func (s *submissionService) AttachFiles(id uuid.UUID, imagePath, diagramPath, designPath string) (*models.Submission, error) {
	submission, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if imagePath != "" {
		submission.ImagePath = imagePath
	}
	if diagramPath != "" {
		submission.DiagramPath = diagramPath
	}
	if designPath != "" {
		submission.DesignPath = designPath
	}
	submission.HasAttachments = submission.ImagePath != "" || submission.DiagramPath != "" || submission.DesignPath != ""

	if err := s.repos.Submission.UpdateAttachments(submission); err != nil {
		return nil, apperrors.DatabaseError("failed to update attachments", err)
	}
	return submission, nil
}

func (s *submissionService) Featured() ([]models.Submission, error) {
	submissions, err := s.repos.Submission.GetFeatured()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list featured submissions", err)
	}
	return submissions, nil
}

func (s *submissionService) SetFeatured(id uuid.UUID, featured bool) error {
	if err := s.repos.Submission.SetFeatured(id, featured); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("submission not found", err)
		}
		return apperrors.DatabaseError("failed to update featured flag", err)
	}
	return nil
}

func (s *submissionService) Stats() (*repository.SubmissionStats, error) {
	version, err := s.repos.ProgramVersion.GetActive()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("no active program version", err)
		}
		return nil, apperrors.DatabaseError("failed to load active program version", err)
	}

	stats, err := s.repos.Submission.GetStats(version.ID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load submission stats", err)
	}
	return stats, nil
}
