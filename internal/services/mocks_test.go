package services

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/technofest-ar/platform-api/internal/models"
	"github.com/technofest-ar/platform-api/internal/repository"
	"github.com/technofest-ar/platform-api/internal/scoring"
)

// In-memory repository fakes. Each mock stores rows in maps and lets tests
// inject errors per method.

func floatPtr(v float64) *float64 { return &v }

type mockAdminRepo struct {
	admins map[uuid.UUID]*models.Admin
	errs   map[string]error
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[uuid.UUID]*models.Admin), errs: make(map[string]error)}
}

func (m *mockAdminRepo) GetByID(id uuid.UUID) (*models.Admin, error) {
	if err := m.errs["GetByID"]; err != nil {
		return nil, err
	}
	a, ok := m.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAdminRepo) GetByUsername(username string) (*models.Admin, error) {
	for _, a := range m.admins {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAdminRepo) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	for _, a := range m.admins {
		if a.Username == username || a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAdminRepo) Create(admin *models.Admin) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.CreatedAt = time.Now()
	copied := *admin
	m.admins[admin.ID] = &copied
	return nil
}

func (m *mockAdminRepo) UpdateWeight(id uuid.UUID, weight float64) error {
	a, ok := m.admins[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.EvaluationWeight = weight
	return nil
}

func (m *mockAdminRepo) GetAll() ([]models.Admin, error) {
	out := make([]models.Admin, 0, len(m.admins))
	for _, a := range m.admins {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAdminRepo) Count() (int, error) { return len(m.admins), nil }

type mockTeamRepo struct {
	teams   map[uuid.UUID]*models.Team
	members map[uuid.UUID][]models.TeamMember
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{teams: make(map[uuid.UUID]*models.Team), members: make(map[uuid.UUID][]models.TeamMember)}
}

func (m *mockTeamRepo) GetByID(id uuid.UUID) (*models.Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTeamRepo) Create(team *models.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	copied := *team
	m.teams[team.ID] = &copied
	return nil
}

func (m *mockTeamRepo) UpdateTelegramLink(id uuid.UUID, link string) error {
	t, ok := m.teams[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.TelegramGroupLink = link
	return nil
}

func (m *mockTeamRepo) GetAll(limit, offset int) ([]models.Team, error) {
	out := make([]models.Team, 0, len(m.teams))
	for _, t := range m.teams {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTeamRepo) SearchByName(name string) ([]models.Team, error) {
	var out []models.Team
	for _, t := range m.teams {
		if strings.Contains(strings.ToLower(t.TeamName), strings.ToLower(name)) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTeamRepo) AddMember(member *models.TeamMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	member.CreatedAt = time.Now()
	m.members[member.TeamID] = append(m.members[member.TeamID], *member)
	return nil
}

func (m *mockTeamRepo) GetMembers(teamID uuid.UUID) ([]models.TeamMember, error) {
	return m.members[teamID], nil
}

func (m *mockTeamRepo) GetMemberByEmail(email string) (*models.TeamMember, error) {
	for _, members := range m.members {
		for _, mem := range members {
			if mem.Email == email {
				copied := mem
				return &copied, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

type mockIndividualRepo struct {
	individuals map[uuid.UUID]*models.Individual
}

func newMockIndividualRepo() *mockIndividualRepo {
	return &mockIndividualRepo{individuals: make(map[uuid.UUID]*models.Individual)}
}

func (m *mockIndividualRepo) GetByID(id uuid.UUID) (*models.Individual, error) {
	ind, ok := m.individuals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *ind
	return &copied, nil
}

func (m *mockIndividualRepo) Create(ind *models.Individual) error {
	if ind.ID == uuid.Nil {
		ind.ID = uuid.New()
	}
	ind.CreatedAt = time.Now()
	copied := *ind
	m.individuals[ind.ID] = &copied
	return nil
}

func (m *mockIndividualRepo) GetAll(limit, offset int) ([]models.Individual, error) {
	out := make([]models.Individual, 0, len(m.individuals))
	for _, ind := range m.individuals {
		out = append(out, *ind)
	}
	return out, nil
}

func (m *mockIndividualRepo) GetUnassigned() ([]models.Individual, error) {
	var out []models.Individual
	for _, ind := range m.individuals {
		if !ind.IsAssigned {
			out = append(out, *ind)
		}
	}
	return out, nil
}

func (m *mockIndividualRepo) GetByIDs(ids []uuid.UUID) ([]models.Individual, error) {
	var out []models.Individual
	for _, id := range ids {
		if ind, ok := m.individuals[id]; ok {
			out = append(out, *ind)
		}
	}
	return out, nil
}

func (m *mockIndividualRepo) MarkAssigned(id, teamID uuid.UUID) error {
	ind, ok := m.individuals[id]
	if !ok {
		return repository.ErrNotFound
	}
	ind.IsAssigned = true
	ind.AssignedTeamID = &teamID
	return nil
}

type mockSubmissionRepo struct {
	submissions map[uuid.UUID]*models.Submission
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{submissions: make(map[uuid.UUID]*models.Submission)}
}

func (m *mockSubmissionRepo) GetByID(id uuid.UUID) (*models.Submission, error) {
	s, ok := m.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSubmissionRepo) Create(sub *models.Submission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	copied := *sub
	m.submissions[sub.ID] = &copied
	return nil
}

func (m *mockSubmissionRepo) UpdateAttachments(sub *models.Submission) error {
	stored, ok := m.submissions[sub.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.ImagePath = sub.ImagePath
	stored.DiagramPath = sub.DiagramPath
	stored.DesignPath = sub.DesignPath
	stored.HasAttachments = sub.HasAttachments
	return nil
}

func (m *mockSubmissionRepo) GetAll(filters repository.SubmissionFilters) ([]models.Submission, error) {
	out := make([]models.Submission, 0, len(m.submissions))
	for _, s := range m.submissions {
		if filters.Field != "" && s.Field != filters.Field {
			continue
		}
		if filters.FeaturedOnly && !s.IsFeatured {
			continue
		}
		out = append(out, *s)
	}
	// Stable order so limit/offset paging behaves like the real store
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })

	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return nil, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(out) {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (m *mockSubmissionRepo) GetByTeam(teamID uuid.UUID) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range m.submissions {
		if s.TeamID == teamID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepo) CountByTeamAndVersion(teamID, programVersionID uuid.UUID) (int, error) {
	count := 0
	for _, s := range m.submissions {
		if s.TeamID == teamID && s.ProgramVersionID == programVersionID {
			count++
		}
	}
	return count, nil
}

func (m *mockSubmissionRepo) GetFeatured() ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range m.submissions {
		if s.IsFeatured {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepo) SetFeatured(id uuid.UUID, featured bool) error {
	s, ok := m.submissions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsFeatured = featured
	return nil
}

func (m *mockSubmissionRepo) GetStats(programVersionID uuid.UUID) (*repository.SubmissionStats, error) {
	stats := &repository.SubmissionStats{FieldDistribution: make(map[string]int)}
	for _, s := range m.submissions {
		if s.ProgramVersionID != programVersionID {
			continue
		}
		stats.Total++
		if s.HasAttachments {
			stats.WithAttachments++
		}
		stats.FieldDistribution[s.Field]++
	}
	return stats, nil
}

// mockEvaluationRepo mirrors the UNIQUE (submission_id, rater_key) behavior
// of the real table: Upsert replaces, preserving created_at.
type mockEvaluationRepo struct {
	rows    map[string]*models.Evaluation
	weights map[string]float64 // rater_key -> weight
	// upsertErrs is consumed one error per Upsert call, letting tests
	// script a transient failure followed by success
	upsertErrs []error
	// pendingAutomated is what GetSubmissionIDsWithoutAutomated returns
	pendingAutomated []uuid.UUID
}

func newMockEvaluationRepo() *mockEvaluationRepo {
	return &mockEvaluationRepo{rows: make(map[string]*models.Evaluation), weights: make(map[string]float64)}
}

func evalKey(submissionID uuid.UUID, raterKey string) string {
	return submissionID.String() + "/" + raterKey
}

func (m *mockEvaluationRepo) Upsert(eval *models.Evaluation) error {
	if len(m.upsertErrs) > 0 {
		err := m.upsertErrs[0]
		m.upsertErrs = m.upsertErrs[1:]
		if err != nil {
			return err
		}
	}

	key := evalKey(eval.SubmissionID, eval.RaterKey)
	now := time.Now()
	if existing, ok := m.rows[key]; ok {
		eval.ID = existing.ID
		eval.CreatedAt = existing.CreatedAt
	} else {
		eval.ID = uuid.New()
		eval.CreatedAt = now
	}
	eval.UpdatedAt = now

	copied := *eval
	m.rows[key] = &copied
	return nil
}

func (m *mockEvaluationRepo) GetBySubmission(submissionID uuid.UUID) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for _, e := range m.rows {
		if e.SubmissionID == submissionID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEvaluationRepo) GetRaterScores(submissionID uuid.UUID) ([]scoring.RaterScore, error) {
	var out []scoring.RaterScore
	for _, e := range m.rows {
		if e.SubmissionID != submissionID {
			continue
		}
		weight, ok := m.weights[e.RaterKey]
		if !ok {
			weight = 10
		}
		out = append(out, scoring.RaterScore{
			Score:     e.Score,
			Weight:    weight,
			Automated: e.Automated,
			UpdatedAt: e.UpdatedAt,
		})
	}
	return out, nil
}

func (m *mockEvaluationRepo) GetSubmissionIDsWithoutAutomated() ([]uuid.UUID, error) {
	return m.pendingAutomated, nil
}

func (m *mockEvaluationRepo) GetStats() (*repository.EvaluationStats, error) {
	stats := &repository.EvaluationStats{}
	for _, e := range m.rows {
		stats.TotalEvaluations++
		if e.Automated {
			stats.AutomatedEvaluations++
		} else {
			stats.AdminEvaluations++
		}
	}
	return stats, nil
}

type mockProgramVersionRepo struct {
	versions []*models.ProgramVersion
}

func newMockProgramVersionRepo() *mockProgramVersionRepo { return &mockProgramVersionRepo{} }

func (m *mockProgramVersionRepo) GetActive() (*models.ProgramVersion, error) {
	for _, v := range m.versions {
		if v.IsActive {
			copied := *v
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockProgramVersionRepo) Create(v *models.ProgramVersion) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for _, existing := range m.versions {
		existing.IsActive = false
	}
	v.IsActive = true
	copied := *v
	m.versions = append(m.versions, &copied)
	return nil
}

func (m *mockProgramVersionRepo) GetAll() ([]models.ProgramVersion, error) {
	out := make([]models.ProgramVersion, 0, len(m.versions))
	for _, v := range m.versions {
		out = append(out, *v)
	}
	return out, nil
}

type mockEmailLogRepo struct {
	entries []*models.EmailLog
}

func newMockEmailLogRepo() *mockEmailLogRepo { return &mockEmailLogRepo{} }

func (m *mockEmailLogRepo) Create(entry *models.EmailLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockEmailLogRepo) MarkSent(id uuid.UUID) error {
	for _, e := range m.entries {
		if e.ID == id {
			e.Status = "sent"
			now := time.Now()
			e.SentAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockEmailLogRepo) MarkFailed(id uuid.UUID, reason string) error {
	for _, e := range m.entries {
		if e.ID == id {
			e.Status = "failed"
			e.ErrorMessage = reason
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockEmailLogRepo) GetAll(limit, offset int) ([]models.EmailLog, error) {
	out := make([]models.EmailLog, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	return out, nil
}

// mockTxManager runs the function against the same repositories; rollback
// semantics are not simulated
type mockTxManager struct {
	repos *repository.Repositories
}

func (m *mockTxManager) WithTransaction(fn func(repos *repository.Repositories) error) error {
	return fn(m.repos)
}

type testRepos struct {
	admin          *mockAdminRepo
	team           *mockTeamRepo
	individual     *mockIndividualRepo
	submission     *mockSubmissionRepo
	evaluation     *mockEvaluationRepo
	programVersion *mockProgramVersionRepo
	emailLog       *mockEmailLogRepo
	repos          *repository.Repositories
}

func newTestRepos() *testRepos {
	t := &testRepos{
		admin:          newMockAdminRepo(),
		team:           newMockTeamRepo(),
		individual:     newMockIndividualRepo(),
		submission:     newMockSubmissionRepo(),
		evaluation:     newMockEvaluationRepo(),
		programVersion: newMockProgramVersionRepo(),
		emailLog:       newMockEmailLogRepo(),
	}
	t.repos = &repository.Repositories{
		Admin:          t.admin,
		Team:           t.team,
		Individual:     t.individual,
		Submission:     t.submission,
		Evaluation:     t.evaluation,
		ProgramVersion: t.programVersion,
		EmailLog:       t.emailLog,
	}
	t.repos.Tx = &mockTxManager{repos: t.repos}
	return t
}

// seedActiveVersion installs an active program edition and returns it
func (t *testRepos) seedActiveVersion() *models.ProgramVersion {
	v := &models.ProgramVersion{VersionNumber: 1, VersionName: "First Edition"}
	_ = t.programVersion.Create(v)
	return v
}

// seedTeam creates a team with one member and returns both
func (t *testRepos) seedTeam(versionID uuid.UUID) (*models.Team, *models.TeamMember) {
	team := &models.Team{
		TeamName:         "AgroTech",
		RegistrationType: models.RegistrationTeamWithIdea,
		Field:            "agriculture",
		InitialIdea:      "Automated irrigation",
		ProgramVersionID: versionID,
		IsActive:         true,
	}
	_ = t.team.Create(team)

	member := &models.TeamMember{
		TeamID:   team.ID,
		FullName: "Lina Hassan",
		Email:    "lina@example.com",
		Phone:    "+100000001",
		IsLeader: true,
	}
	_ = t.team.AddMember(member)
	return team, member
}

// seedSubmission creates a stored submission for the team
func (t *testRepos) seedSubmission(teamID, versionID uuid.UUID) *models.Submission {
	sub := &models.Submission{
		TeamID:               teamID,
		ProgramVersionID:     versionID,
		SubmissionVersion:    1,
		Title:                "Smart Irrigation Controller",
		ProblemStatement:     "Farms waste water.",
		TechnicalDescription: strings.Repeat("d", 1200),
		ScientificReference:  "FAO 2019",
		Field:                "agriculture",
		IsComplete:           true,
	}
	_ = t.submission.Create(sub)
	return sub
}
