package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/auth"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/repository"
	"github.com/technofest-ar/platform-api/pkg/config"
)

const defaultEvaluationWeight = 10

type authService struct {
	repos *repository.Repositories
	cfg   *config.Config
	jwt   *auth.JWTService
}

func newAuthService(repos *repository.Repositories, cfg *config.Config) AuthService {
	return &authService{
		repos: repos,
		cfg:   cfg,
		jwt:   auth.NewJWTService(cfg.JWTSecret),
	}
}

// Register creates an admin account. Registration is gated by a shared code;
// the first account ever created (or the configured superadmin username)
// becomes superadmin.
func (s *authService) Register(req RegisterAdminRequest) (*models.Admin, error) {
	if s.cfg.AdminRegistrationCode == "" || req.RegistrationCode != s.cfg.AdminRegistrationCode {
		return nil, apperrors.Forbidden("invalid registration code", nil)
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	exists, err := s.repos.Admin.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to check admin uniqueness", err)
	}
	if exists {
		return nil, apperrors.Conflict("username or email is already registered", nil)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError("failed to hash password", err)
	}

	count, err := s.repos.Admin.Count()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to count admins", err)
	}

	admin := &models.Admin{
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		FullName:         req.FullName,
		EvaluationWeight: defaultEvaluationWeight,
		IsActive:         true,
		IsSuperAdmin:     count == 0 || (s.cfg.SuperAdminUsername != "" && username == s.cfg.SuperAdminUsername),
	}

	if err := s.repos.Admin.Create(admin); err != nil {
		return nil, apperrors.DatabaseError("failed to create admin", err)
	}
	return admin, nil
}

// Login verifies credentials and issues a signed token
func (s *authService) Login(username, password string) (*LoginResponse, error) {
	admin, err := s.repos.Admin.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid username or password", nil)
		}
		return nil, apperrors.DatabaseError("failed to load admin", err)
	}

	if !admin.IsActive {
		return nil, apperrors.Forbidden("account is disabled", nil)
	}

	if !auth.CheckPassword(password, admin.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid username or password", nil)
	}

	token, expiresAt, err := s.jwt.GenerateToken(auth.Claims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		IsSuperAdmin: admin.IsSuperAdmin,
	})
	if err != nil {
		return nil, apperrors.InternalError("failed to issue token", err)
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

func (s *authService) GetAdmin(id uuid.UUID) (*models.Admin, error) {
	admin, err := s.repos.Admin.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("admin not found", err)
		}
		return nil, apperrors.DatabaseError("failed to load admin", err)
	}
	return admin, nil
}

func (s *authService) ListAdmins() ([]models.Admin, error) {
	admins, err := s.repos.Admin.GetAll()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list admins", err)
	}
	return admins, nil
}

// UpdateWeight adjusts an admin's voting power within the 0-100 range
func (s *authService) UpdateWeight(id uuid.UUID, weight float64) error {
	if weight < 0 || weight > 100 {
		return apperrors.ValidationError("evaluation weight must be between 0 and 100", nil)
	}

	if _, err := s.GetAdmin(id); err != nil {
		return err
	}

	if err := s.repos.Admin.UpdateWeight(id, weight); err != nil {
		return apperrors.DatabaseError("failed to update evaluation weight", err)
	}
	return nil
}
