package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/yigit/hireloop/internal/app/auth"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/cache"
	"github.com/yigit/hireloop/internal/pkg/email"
)

var testLogger = zerolog.Nop()

func ptr[T any](v T) *T { return &v }

// --- users -----------------------------------------------------------------

type fakeUsers struct {
	byID   map[int64]*models.User
	nextID int64
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]*models.User{}, nextID: 100}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) (int64, error) {
	for _, existing := range f.byID {
		if existing.Email == strings.ToLower(u.Email) {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.Email = strings.ToLower(u.Email)
	cp := *u
	f.byID[u.ID] = &cp
	return u.ID, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	if u, ok := f.byID[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUsers) ListUsers(_ context.Context, filter models.UserFilter) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.byID {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		if filter.Email != "" && !strings.Contains(u.Email, strings.ToLower(filter.Email)) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// --- tokens ----------------------------------------------------------------

type tokenRow struct {
	userID    int64
	expiresAt time.Time
	revoked   bool
}

type fakeTokens struct {
	rows map[string]*tokenRow
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]*tokenRow{}} }

func (f *fakeTokens) CreateToken(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	f.rows[token] = &tokenRow{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeTokens) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	row, ok := f.rows[token]
	switch {
	case !ok:
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	case row.revoked:
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	case row.expiresAt.Before(time.Now()):
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return row.userID, row.expiresAt, nil
}

func (f *fakeTokens) RevokeToken(_ context.Context, token string) error {
	row, ok := f.rows[token]
	if !ok || row.revoked {
		return apperrors.ErrTokenNotFound
	}
	row.revoked = true
	return nil
}

func (f *fakeTokens) RotateToken(ctx context.Context, oldToken, newToken string, userID int64, expiresAt time.Time) error {
	if err := f.RevokeToken(ctx, oldToken); err != nil {
		return err
	}
	return f.CreateToken(ctx, newToken, userID, expiresAt)
}

func (f *fakeTokens) RevokeAllUserTokens(_ context.Context, userID int64) error {
	for _, row := range f.rows {
		if row.userID == userID {
			row.revoked = true
		}
	}
	return nil
}

// --- companies -------------------------------------------------------------

type fakeCompanies struct {
	byID   map[int64]*models.Company
	users  *fakeUsers
	nextID int64
}

func newFakeCompanies(users *fakeUsers, companies ...*models.Company) *fakeCompanies {
	f := &fakeCompanies{byID: map[int64]*models.Company{}, users: users, nextID: 100}
	for _, c := range companies {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCompanies) CreateCompany(_ context.Context, c *models.Company, linkOwner bool) (int64, error) {
	for _, existing := range f.byID {
		if existing.DeletedAt == nil && strings.EqualFold(existing.Name, c.Name) {
			return 0, apperrors.ErrCompanyAlreadyExists
		}
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.byID[c.ID] = &cp
	if linkOwner && f.users != nil {
		if u, ok := f.users.byID[c.OwnerID]; ok {
			u.CompanyID = ptr(c.ID)
		}
	}
	return c.ID, nil
}

func (f *fakeCompanies) GetCompanyByID(_ context.Context, id int64) (*models.Company, error) {
	c, ok := f.byID[id]
	if !ok || c.DeletedAt != nil {
		return nil, apperrors.ErrCompanyNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompanies) UpdateCompany(_ context.Context, c *models.Company) error {
	if _, ok := f.byID[c.ID]; !ok {
		return apperrors.ErrCompanyNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCompanies) SoftDeleteCompany(_ context.Context, id int64) error {
	c, ok := f.byID[id]
	if !ok || c.DeletedAt != nil {
		return apperrors.ErrCompanyNotFound
	}
	c.DeletedAt = ptr(time.Now())
	return nil
}

func (f *fakeCompanies) SetVerified(_ context.Context, id int64, verified bool) error {
	c, ok := f.byID[id]
	if !ok || c.DeletedAt != nil {
		return apperrors.ErrCompanyNotFound
	}
	c.IsVerified = verified
	return nil
}

func (f *fakeCompanies) SearchCompanies(_ context.Context, filter models.CompanyFilter) ([]*models.Company, int64, error) {
	var out []*models.Company
	for _, c := range f.byID {
		if c.DeletedAt != nil {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Industry != "" && c.Industry != filter.Industry {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(c.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.Verified != nil && c.IsVerified != *filter.Verified {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// --- jobs ------------------------------------------------------------------

type fakeJobs struct {
	byID   map[int64]*models.Job
	nextID int64
}

func newFakeJobs(jobs ...*models.Job) *fakeJobs {
	f := &fakeJobs{byID: map[int64]*models.Job{}, nextID: 100}
	for _, j := range jobs {
		f.byID[j.ID] = j
	}
	return f
}

func (f *fakeJobs) CreateJob(_ context.Context, j *models.Job) (int64, error) {
	f.nextID++
	j.ID = f.nextID
	cp := *j
	f.byID[j.ID] = &cp
	return j.ID, nil
}

func (f *fakeJobs) GetJobByID(_ context.Context, id int64) (*models.Job, error) {
	j, ok := f.byID[id]
	if !ok || j.DeletedAt != nil {
		return nil, apperrors.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) UpdateJob(_ context.Context, j *models.Job) error {
	cp := *j
	f.byID[j.ID] = &cp
	return nil
}

func (f *fakeJobs) UpdateJobStatus(_ context.Context, id int64, from, to models.JobStatus, publishedAt *time.Time) error {
	j, ok := f.byID[id]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	if j.Status != from {
		return apperrors.NewConflictError("job status changed concurrently")
	}
	j.Status = to
	if publishedAt != nil {
		j.PublishedAt = publishedAt
	}
	return nil
}

func (f *fakeJobs) AssignConsultant(_ context.Context, jobID int64, consultantID *int64) error {
	j, ok := f.byID[jobID]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	j.ConsultantID = consultantID
	return nil
}

func (f *fakeJobs) SoftDeleteJob(_ context.Context, id int64) error {
	j, ok := f.byID[id]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	j.DeletedAt = ptr(time.Now())
	return nil
}

func (f *fakeJobs) SearchJobs(_ context.Context, filter models.JobFilter) ([]*models.Job, int64, error) {
	var out []*models.Job
	for _, j := range f.byID {
		if j.DeletedAt != nil {
			continue
		}
		if filter.Status != nil && j.Status != *filter.Status {
			continue
		}
		if filter.CompanyID != nil && j.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.ConsultantID != nil && (j.ConsultantID == nil || *j.ConsultantID != *filter.ConsultantID) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// --- candidates ------------------------------------------------------------

type fakeCandidates struct {
	byID   map[int64]*models.CandidateProfile
	nextID int64
}

func newFakeCandidates(profiles ...*models.CandidateProfile) *fakeCandidates {
	f := &fakeCandidates{byID: map[int64]*models.CandidateProfile{}, nextID: 100}
	for _, p := range profiles {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeCandidates) CreateProfile(_ context.Context, p *models.CandidateProfile) (int64, error) {
	for _, existing := range f.byID {
		if existing.UserID == p.UserID && existing.DeletedAt == nil {
			return 0, apperrors.ErrProfileExists
		}
	}
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.byID[p.ID] = &cp
	return p.ID, nil
}

func (f *fakeCandidates) GetProfileByID(_ context.Context, id int64) (*models.CandidateProfile, error) {
	p, ok := f.byID[id]
	if !ok || p.DeletedAt != nil {
		return nil, apperrors.ErrCandidateNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCandidates) GetProfileByUserID(_ context.Context, userID int64) (*models.CandidateProfile, error) {
	for _, p := range f.byID {
		if p.UserID == userID && p.DeletedAt == nil {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCandidateNotFound
}

func (f *fakeCandidates) UpdateProfile(_ context.Context, p *models.CandidateProfile) error {
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeCandidates) UpdateResume(_ context.Context, id int64, url string) error {
	p, ok := f.byID[id]
	if !ok {
		return apperrors.ErrCandidateNotFound
	}
	p.ResumeURL = url
	return nil
}

func (f *fakeCandidates) SoftDeleteProfile(_ context.Context, id int64) error {
	p, ok := f.byID[id]
	if !ok || p.DeletedAt != nil {
		return apperrors.ErrCandidateNotFound
	}
	p.DeletedAt = ptr(time.Now())
	return nil
}

func (f *fakeCandidates) SearchProfiles(_ context.Context, filter models.CandidateFilter) ([]*models.CandidateProfile, int64, error) {
	var out []*models.CandidateProfile
	for _, p := range f.byID {
		if p.DeletedAt != nil {
			continue
		}
		if filter.Skill != "" {
			found := false
			for _, s := range p.Skills {
				if strings.EqualFold(s, filter.Skill) {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

// --- consultants -----------------------------------------------------------

type fakeConsultants struct {
	byID   map[int64]*models.Consultant
	nextID int64
}

func newFakeConsultants(consultants ...*models.Consultant) *fakeConsultants {
	f := &fakeConsultants{byID: map[int64]*models.Consultant{}, nextID: 100}
	for _, c := range consultants {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeConsultants) CreateConsultant(_ context.Context, k *models.Consultant) (int64, error) {
	for _, existing := range f.byID {
		if existing.UserID == k.UserID {
			return 0, apperrors.ErrProfileExists
		}
	}
	f.nextID++
	k.ID = f.nextID
	cp := *k
	f.byID[k.ID] = &cp
	return k.ID, nil
}

func (f *fakeConsultants) GetConsultantByID(_ context.Context, id int64) (*models.Consultant, error) {
	if k, ok := f.byID[id]; ok {
		cp := *k
		return &cp, nil
	}
	return nil, apperrors.ErrConsultantNotFound
}

func (f *fakeConsultants) GetConsultantByUserID(_ context.Context, userID int64) (*models.Consultant, error) {
	for _, k := range f.byID {
		if k.UserID == userID {
			cp := *k
			return &cp, nil
		}
	}
	return nil, apperrors.ErrConsultantNotFound
}

func (f *fakeConsultants) UpdateConsultant(_ context.Context, k *models.Consultant) error {
	cp := *k
	f.byID[k.ID] = &cp
	return nil
}

func (f *fakeConsultants) ListConsultants(_ context.Context, filter models.ConsultantFilter) ([]*models.Consultant, int64, error) {
	var out []*models.Consultant
	for _, k := range f.byID {
		if filter.Active != nil && k.IsActive != *filter.Active {
			continue
		}
		out = append(out, k)
	}
	return out, int64(len(out)), nil
}

// --- applications ----------------------------------------------------------

// fakeApplications mirrors the transactional status change of the repository
// against the job and consultant fakes.
type fakeApplications struct {
	byID        map[int64]*models.Application
	history     []*models.StatusHistory
	jobs        *fakeJobs
	consultants *fakeConsultants
	nextID      int64
	applyErr    error
}

func newFakeApplications(jobs *fakeJobs, consultants *fakeConsultants) *fakeApplications {
	return &fakeApplications{byID: map[int64]*models.Application{}, jobs: jobs, consultants: consultants, nextID: 100}
}

func (f *fakeApplications) add(a *models.Application) {
	f.byID[a.ID] = a
}

func (f *fakeApplications) CreateApplication(_ context.Context, a *models.Application, actorID int64) (int64, error) {
	for _, existing := range f.byID {
		if existing.JobID == a.JobID && existing.CandidateID == a.CandidateID {
			return 0, apperrors.ErrAlreadyApplied
		}
	}
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.byID[a.ID] = &cp
	f.history = append(f.history, &models.StatusHistory{ApplicationID: a.ID, ToStatus: a.Status, ChangedBy: actorID, CreatedAt: a.SubmittedAt})
	return a.ID, nil
}

func (f *fakeApplications) GetApplicationByID(_ context.Context, id int64) (*models.Application, error) {
	if a, ok := f.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, apperrors.ErrApplicationNotFound
}

func (f *fakeApplications) ListApplications(_ context.Context, filter models.ApplicationFilter) ([]*models.Application, int64, error) {
	var out []*models.Application
	for _, a := range f.byID {
		if filter.JobID != nil && a.JobID != *filter.JobID {
			continue
		}
		if filter.CandidateID != nil && a.CandidateID != *filter.CandidateID {
			continue
		}
		if filter.ConsultantID != nil && (a.ConsultantID == nil || *a.ConsultantID != *filter.ConsultantID) {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeApplications) CountApplicationsSince(_ context.Context, candidateID int64, since time.Time) (int64, error) {
	var n int64
	for _, a := range f.byID {
		if a.CandidateID == candidateID && !a.SubmittedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeApplications) ListStatusHistory(_ context.Context, applicationID int64) ([]*models.StatusHistory, error) {
	var out []*models.StatusHistory
	for _, h := range f.history {
		if h.ApplicationID == applicationID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeApplications) SetRating(_ context.Context, applicationID int64, rating int) error {
	a, ok := f.byID[applicationID]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	a.Rating = &rating
	return nil
}

func (f *fakeApplications) ApplyStatusChange(_ context.Context, c *models.StatusChange) (*models.StatusChangeResult, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	a, ok := f.byID[c.ApplicationID]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	if a.Status != c.From {
		return nil, apperrors.NewConflictError("application status changed concurrently")
	}

	result := &models.StatusChangeResult{}
	if c.To == models.StatusHired {
		job := f.jobs.byID[c.JobID]
		if job.PositionsFilled >= job.Positions {
			return nil, apperrors.ErrNoOpenPositions
		}
		job.PositionsFilled++
		if job.PositionsFilled == job.Positions && job.Status.FillsOnLastHire() {
			job.Status = models.JobStatusFilled
			result.JobFilled = true
		}
		if c.ConsultantID != nil {
			k := f.consultants.byID[*c.ConsultantID]
			k.TotalPlacements++
			if c.PlacementFee.Valid {
				k.TotalFees = k.TotalFees.Add(c.PlacementFee.Decimal)
			}
		}
		a.PlacementFee = c.PlacementFee
		a.HiredAt = ptr(c.At)
	}

	a.Status = c.To
	from := c.From
	f.history = append(f.history, &models.StatusHistory{
		ApplicationID: a.ID, FromStatus: &from, ToStatus: c.To, ChangedBy: c.ChangedBy, Note: c.Note, CreatedAt: c.At,
	})
	return result, nil
}

// --- messages --------------------------------------------------------------

type fakeMessages struct {
	conversations map[int64]*models.Conversation
	participants  map[int64][]int64
	messages      []*models.Message
	reads         map[int64]map[int64]time.Time
	nextID        int64
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{
		conversations: map[int64]*models.Conversation{},
		participants:  map[int64][]int64{},
		reads:         map[int64]map[int64]time.Time{},
		nextID:        100,
	}
}

func (f *fakeMessages) CreateConversation(_ context.Context, conv *models.Conversation, ids []int64) (int64, error) {
	f.nextID++
	conv.ID = f.nextID
	cp := *conv
	f.conversations[conv.ID] = &cp
	f.participants[conv.ID] = append([]int64(nil), ids...)
	f.reads[conv.ID] = map[int64]time.Time{}
	return conv.ID, nil
}

func (f *fakeMessages) FindDirectConversation(_ context.Context, a, b int64, appID *int64) (*models.Conversation, error) {
	for id, ps := range f.participants {
		if len(ps) != 2 {
			continue
		}
		if !((ps[0] == a && ps[1] == b) || (ps[0] == b && ps[1] == a)) {
			continue
		}
		conv := f.conversations[id]
		sameApp := (appID == nil && conv.ApplicationID == nil) ||
			(appID != nil && conv.ApplicationID != nil && *appID == *conv.ApplicationID)
		if sameApp {
			cp := *conv
			return &cp, nil
		}
	}
	return nil, apperrors.ErrConversationNotFound
}

func (f *fakeMessages) GetConversation(_ context.Context, id int64) (*models.Conversation, error) {
	if c, ok := f.conversations[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, apperrors.ErrConversationNotFound
}

func (f *fakeMessages) IsParticipant(_ context.Context, convID, userID int64) (bool, error) {
	for _, id := range f.participants[convID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessages) ListParticipants(_ context.Context, convID int64) ([]int64, error) {
	return f.participants[convID], nil
}

func (f *fakeMessages) ListConversations(_ context.Context, userID int64, _, _ int) ([]*models.ConversationSummary, int64, error) {
	var out []*models.ConversationSummary
	for id, ps := range f.participants {
		for _, p := range ps {
			if p == userID {
				out = append(out, &models.ConversationSummary{Conversation: *f.conversations[id], ParticipantIDs: ps})
			}
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeMessages) CreateMessage(_ context.Context, m *models.Message) (int64, error) {
	f.nextID++
	m.ID = f.nextID
	m.CreatedAt = time.Now()
	cp := *m
	f.messages = append(f.messages, &cp)
	f.reads[m.ConversationID][m.SenderID] = m.CreatedAt
	return m.ID, nil
}

func (f *fakeMessages) ListMessages(_ context.Context, convID, before int64, limit int) ([]*models.Message, error) {
	var out []*models.Message
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		m := f.messages[i]
		if m.ConversationID == convID && (before == 0 || m.ID < before) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, convID, userID int64, at time.Time) error {
	ok, _ := f.IsParticipant(context.Background(), convID, userID)
	if !ok {
		return apperrors.ErrNotParticipant
	}
	f.reads[convID][userID] = at
	return nil
}

func (f *fakeMessages) CountUnread(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.SenderID == userID {
			continue
		}
		ok, _ := f.IsParticipant(context.Background(), m.ConversationID, userID)
		if ok && f.reads[m.ConversationID][userID].Before(m.CreatedAt) {
			n++
		}
	}
	return n, nil
}

// --- notifications ---------------------------------------------------------

type fakeNotifications struct {
	items  []*models.Notification
	nextID int64
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *models.Notification) (int64, error) {
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	cp := *n
	f.items = append(f.items, &cp)
	return n.ID, nil
}

func (f *fakeNotifications) ListNotifications(_ context.Context, userID int64, unreadOnly bool, _, _ int) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, n := range f.items {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID int64, at time.Time) error {
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			n.ReadAt = &at
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID int64, at time.Time) (int64, error) {
	var n int64
	for _, item := range f.items {
		if item.UserID == userID && !item.IsRead {
			item.IsRead = true
			item.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, item := range f.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) forUser(userID int64, kind models.NotificationType) []*models.Notification {
	var out []*models.Notification
	for _, n := range f.items {
		if n.UserID == userID && n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

// --- configuration ---------------------------------------------------------

type fakeConfig struct {
	entries map[string]*models.SystemConfiguration
	admins  map[int64]*models.AdminProfile
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{entries: map[string]*models.SystemConfiguration{}, admins: map[int64]*models.AdminProfile{}}
}

func (f *fakeConfig) set(key, value string) {
	f.entries[key] = &models.SystemConfiguration{Key: key, Value: json.RawMessage(value)}
}

func (f *fakeConfig) GetConfig(_ context.Context, key string) (*models.SystemConfiguration, error) {
	if c, ok := f.entries[key]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, apperrors.ErrConfigurationNotFound
}

func (f *fakeConfig) UpsertConfig(_ context.Context, c *models.SystemConfiguration) error {
	cp := *c
	f.entries[c.Key] = &cp
	return nil
}

func (f *fakeConfig) ListConfigs(_ context.Context, publicOnly bool) ([]*models.SystemConfiguration, error) {
	var out []*models.SystemConfiguration
	for _, c := range f.entries {
		if !publicOnly || c.IsPublic {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeConfig) DeleteConfig(_ context.Context, key string) error {
	if _, ok := f.entries[key]; !ok {
		return apperrors.ErrConfigurationNotFound
	}
	delete(f.entries, key)
	return nil
}

func (f *fakeConfig) GetAdminProfileByUserID(_ context.Context, userID int64) (*models.AdminProfile, error) {
	if p, ok := f.admins[userID]; ok {
		return p, nil
	}
	return nil, apperrors.NewResourceNotFoundError("admin profile not found")
}

// --- side effect recorders -------------------------------------------------

type pushed struct {
	userID    int64
	eventType string
	data      interface{}
}

type fakePusher struct {
	mu     sync.Mutex
	events []pushed
	online map[int64]bool
}

func newFakePusher() *fakePusher { return &fakePusher{online: map[int64]bool{}} }

func (p *fakePusher) SendToUser(userID int64, eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{userID: userID, eventType: eventType, data: data})
}

func (p *fakePusher) IsOnline(userID int64) bool { return p.online[userID] }

func (p *fakePusher) count(userID int64, eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.userID == userID && e.eventType == eventType {
			n++
		}
	}
	return n
}

type sentMail struct {
	to     string
	kind   string
	status string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendWelcomeEmail(toEmail, _ string) error {
	m.sent = append(m.sent, sentMail{to: toEmail, kind: "welcome"})
	return nil
}

func (m *fakeMailer) SendApplicationStatusEmail(toEmail, _ string, update email.StatusUpdate) error {
	m.sent = append(m.sent, sentMail{to: toEmail, kind: "status", status: update.Status})
	return nil
}

func (m *fakeMailer) SendNewMessageEmail(toEmail, _, _, _ string) error {
	m.sent = append(m.sent, sentMail{to: toEmail, kind: "message"})
	return nil
}

type publishedEvent struct {
	eventType string
	key       string
	payload   interface{}
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, eventType, key string, payload interface{}) error {
	p.events = append(p.events, publishedEvent{eventType: eventType, key: key, payload: payload})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) ofType(eventType string) []publishedEvent {
	var out []publishedEvent
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// memCache is a JSON round-tripping in-memory cache
type memCache struct {
	entries         map[string][]byte
	deletedPatterns []string
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) DeletePattern(_ context.Context, pattern string) error {
	c.deletedPatterns = append(c.deletedPatterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }

func (c *memCache) Close() error { return nil }

// --- world -----------------------------------------------------------------

// Fixture ids
const (
	adminUserID      int64 = 1
	employerUserID   int64 = 2
	outsiderUserID   int64 = 3
	consultantUserID int64 = 4
	candidateUserID  int64 = 5
	otherCandUserID  int64 = 6

	companyID    int64 = 10
	jobID        int64 = 20
	consultantID int64 = 40
	profileID    int64 = 50
	otherProfile int64 = 51
)

var (
	adminActor      = models.Actor{UserID: adminUserID, Role: models.RoleAdmin}
	employerActor   = models.Actor{UserID: employerUserID, Role: models.RoleEmployer}
	outsiderActor   = models.Actor{UserID: outsiderUserID, Role: models.RoleEmployer}
	consultantActor = models.Actor{UserID: consultantUserID, Role: models.RoleConsultant}
	candidateActor  = models.Actor{UserID: candidateUserID, Role: models.RoleCandidate}
	otherCandActor  = models.Actor{UserID: otherCandUserID, Role: models.RoleCandidate}
)

// world wires every fake together around one company, one open job with an
// assigned consultant and two candidates.
type world struct {
	users         *fakeUsers
	tokens        *fakeTokens
	companies     *fakeCompanies
	jobs          *fakeJobs
	candidates    *fakeCandidates
	consultants   *fakeConsultants
	applications  *fakeApplications
	messages      *fakeMessages
	notifications *fakeNotifications
	config        *fakeConfig
	pusher        *fakePusher
	mailer        *fakeMailer
	publisher     *fakePublisher
	cache         *memCache
	authz         *auth.AuthorizationService
	settings      *Settings
	notifier      NotificationService
}

func newWorld() *world {
	users := newFakeUsers(
		&models.User{ID: adminUserID, Email: "admin@hireloop.app", FirstName: "Ada", LastName: "Admin", Role: models.RoleAdmin, IsActive: true},
		&models.User{ID: employerUserID, Email: "boss@acme.io", FirstName: "Eve", LastName: "Employer", Role: models.RoleEmployer, IsActive: true, CompanyID: ptr(companyID)},
		&models.User{ID: outsiderUserID, Email: "other@globex.io", FirstName: "Otto", LastName: "Outsider", Role: models.RoleEmployer, IsActive: true},
		&models.User{ID: consultantUserID, Email: "cora@agency.io", FirstName: "Cora", LastName: "Consultant", Role: models.RoleConsultant, IsActive: true},
		&models.User{ID: candidateUserID, Email: "cand@mail.io", FirstName: "Cal", LastName: "Candidate", Role: models.RoleCandidate, IsActive: true},
		&models.User{ID: otherCandUserID, Email: "dana@mail.io", FirstName: "Dana", LastName: "Doe", Role: models.RoleCandidate, IsActive: true},
	)
	companies := newFakeCompanies(users, &models.Company{ID: companyID, Name: "Acme", Industry: "Software", Location: "Berlin", OwnerID: employerUserID})
	jobs := newFakeJobs(&models.Job{
		ID:           jobID,
		CompanyID:    companyID,
		Title:        "Backend Engineer",
		Status:       models.JobStatusOpen,
		Positions:    1,
		Skills:       []string{"go", "postgresql"},
		SalaryMin:    decimal.NewNullDecimal(decimal.NewFromInt(60000)),
		SalaryMax:    decimal.NewNullDecimal(decimal.NewFromInt(80000)),
		ConsultantID: ptr(consultantID),
		PostedBy:     employerUserID,
	})
	candidates := newFakeCandidates(
		&models.CandidateProfile{ID: profileID, UserID: candidateUserID, FirstName: "Cal", LastName: "Candidate", Headline: "Gopher", Skills: []string{"go", "postgresql"}},
		&models.CandidateProfile{ID: otherProfile, UserID: otherCandUserID, FirstName: "Dana", LastName: "Doe", Headline: "Designer", Skills: []string{"figma"}},
	)
	consultants := newFakeConsultants(&models.Consultant{
		ID: consultantID, UserID: consultantUserID, CommissionRate: decimal.RequireFromString("0.15"), IsActive: true,
	})

	w := &world{
		users:         users,
		tokens:        newFakeTokens(),
		companies:     companies,
		jobs:          jobs,
		candidates:    candidates,
		consultants:   consultants,
		applications:  newFakeApplications(jobs, consultants),
		messages:      newFakeMessages(),
		notifications: &fakeNotifications{},
		config:        newFakeConfig(),
		pusher:        newFakePusher(),
		mailer:        &fakeMailer{},
		publisher:     &fakePublisher{},
		cache:         newMemCache(),
	}
	w.authz = auth.NewAuthorizationService(users, companies, consultants)
	w.settings = NewSettings(w.config, testLogger)
	w.notifier = NewNotificationService(w.notifications, w.pusher, testLogger)
	return w
}

func (w *world) applicationService() *applicationServiceImpl {
	return NewApplicationService(ApplicationDeps{
		Applications:  w.applications,
		Jobs:          w.jobs,
		Candidates:    w.candidates,
		Consultants:   w.consultants,
		Companies:     w.companies,
		Users:         w.users,
		Authz:         w.authz,
		Notifications: w.notifier,
		Mailer:        w.mailer,
		Publisher:     w.publisher,
		Cache:         w.cache,
		Settings:      w.settings,
	}, testLogger).(*applicationServiceImpl)
}

// seedApplication stores an application of the main candidate for the main job
func (w *world) seedApplication(status models.ApplicationStatus) *models.Application {
	app := &models.Application{
		ID:               900,
		JobID:            jobID,
		CandidateID:      profileID,
		ConsultantID:     ptr(consultantID),
		Status:           status,
		SubmittedAt:      time.Now().Add(-48 * time.Hour),
		JobTitle:         "Backend Engineer",
		CompanyID:        companyID,
		CandidateUserID:  candidateUserID,
		CandidateName:    "Cal Candidate",
		ConsultantUserID: ptr(consultantUserID),
	}
	w.applications.add(app)
	return app
}
