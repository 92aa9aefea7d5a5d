package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
	"github.com/technofest-ar/platform-api/internal/logger"
	"github.com/technofest-ar/platform-api/internal/mailer"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/pdf"
	"github.com/technofest-ar/platform-api/internal/repository"
	"github.com/technofest-ar/platform-api/internal/scoring"
)

type exportService struct {
	repos      *repository.Repositories
	evaluation *evaluationService
	renderer   *pdf.Generator
	mail       *mailer.Mailer
	bounds     scoring.Bounds
	log        logger.Logger
}

func newExportService(repos *repository.Repositories, evaluation *evaluationService, renderer *pdf.Generator, mail *mailer.Mailer, bounds scoring.Bounds, log logger.Logger) ExportService {
	return &exportService{
		repos:      repos,
		evaluation: evaluation,
		renderer:   renderer,
		mail:       mail,
		bounds:     bounds,
		log:        log,
	}
}

// ProjectPDF renders a single submission report including its current score
func (s *exportService) ProjectPDF(submissionID uuid.UUID) ([]byte, error) {
	submission, err := s.repos.Submission.GetByID(submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("submission not found", err)
		}
		return nil, apperrors.DatabaseError("failed to load submission", err)
	}

	teamName := ""
	if team, err := s.repos.Team.GetByID(submission.TeamID); err == nil {
		teamName = team.TeamName
	}

	score, err := s.evaluation.GetScore(submissionID)
	if err != nil {
		return nil, err
	}

	report := pdf.ProjectReport{
		Title:                submission.Title,
		TeamName:             teamName,
		Field:                submission.Field,
		ProblemStatement:     submission.ProblemStatement,
		TechnicalDescription: submission.TechnicalDescription,
		ScientificReference:  submission.ScientificReference,
		FinalScore:           score.Final,
		AdminScore:           score.AdminComponent,
		AIScore:              score.AutomatedComponent,
		AdminMax:             s.bounds.AdminMax,
		AIMax:                s.bounds.AIMax,
	}

	data, err := s.renderer.ProjectPDF(report)
	if err != nil {
		return nil, apperrors.InternalError("failed to render project PDF", err)
	}
	return data, nil
}

// RankedReportPDF renders the full ranked projects table
func (s *exportService) RankedReportPDF() ([]byte, error) {
	entries, err := s.evaluation.rankAll()
	if err != nil {
		return nil, err
	}

	rows := make([]pdf.RankedProject, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, pdf.RankedProject{
			Rank:       e.Rank,
			Title:      e.Title,
			TeamName:   e.TeamName,
			Field:      e.Field,
			FinalScore: e.Score.Final,
		})
	}

	data, err := s.renderer.ProjectsReportPDF(rows)
	if err != nil {
		return nil, apperrors.InternalError("failed to render ranked report PDF", err)
	}
	return data, nil
}

// TeamPDF renders a team roster
func (s *exportService) TeamPDF(teamID uuid.UUID) ([]byte, error) {
	team, members, err := s.loadTeam(teamID)
	if err != nil {
		return nil, err
	}

	roster := pdf.TeamRoster{
		TeamName:         team.TeamName,
		Field:            team.Field,
		RegistrationType: team.RegistrationType,
		InitialIdea:      team.InitialIdea,
	}
	for _, m := range members {
		roster.Members = append(roster.Members, pdf.RosterMember{
			FullName: m.FullName,
			Email:    m.Email,
			Phone:    m.Phone,
			IsLeader: m.IsLeader,
		})
	}

	data, err := s.renderer.TeamPDF(roster)
	if err != nil {
		return nil, apperrors.InternalError("failed to render team PDF", err)
	}
	return data, nil
}

// SendTelegramInvites emails the team's Telegram group link to every member.
// Each attempt is recorded in the email log with its delivery outcome.
func (s *exportService) SendTelegramInvites(teamID uuid.UUID) ([]mailer.SendResult, error) {
	team, members, err := s.loadTeam(teamID)
	if err != nil {
		return nil, err
	}
	if team.TelegramGroupLink == "" {
		return nil, apperrors.ValidationError("the team has no telegram group link set", nil)
	}
	if len(members) == 0 {
		return nil, apperrors.ValidationError("the team has no members to invite", nil)
	}

	recipients := make([]mailer.InviteRecipient, 0, len(members))
	for _, m := range members {
		recipients = append(recipients, mailer.InviteRecipient{
			Email:    m.Email,
			Name:     m.FullName,
			TeamName: team.TeamName,
		})
	}

	results := s.mail.SendTelegramInvites(recipients, team.TelegramGroupLink)

	for _, r := range results {
		entry := &models.EmailLog{
			RecipientEmail: r.Email,
			Subject:        fmt.Sprintf("Invitation to join team %s", team.TeamName),
		}
		if r.Sent {
			entry.Status = "sent"
		} else {
			entry.Status = "failed"
			entry.ErrorMessage = r.Error
		}
		if err := s.repos.EmailLog.Create(entry); err != nil {
			s.log.Error("failed to record email log entry", err, "recipient", r.Email)
		}
	}

	return results, nil
}

func (s *exportService) loadTeam(teamID uuid.UUID) (*models.Team, []models.TeamMember, error) {
	team, err := s.repos.Team.GetByID(teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NotFound("team not found", err)
		}
		return nil, nil, apperrors.DatabaseError("failed to load team", err)
	}

	members, err := s.repos.Team.GetMembers(teamID)
	if err != nil {
		return nil, nil, apperrors.DatabaseError("failed to load team members", err)
	}
	return team, members, nil
}
