//go:build integration

package repositories

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yigit/hireloop/internal/app/migrations"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
)

// Run with: go test -tags integration ./internal/app/repositories/...
// HIRELOOP_TEST_DATABASE_URL points at an existing database; otherwise a
// postgres container is started.

var (
	poolOnce sync.Once
	testPool *pgxpool.Pool
	poolErr  error
	seq      atomic.Int64
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		seq.Store(time.Now().UnixNano())
		ctx := context.Background()
		dsn := os.Getenv("HIRELOOP_TEST_DATABASE_URL")
		if dsn == "" {
			req := testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "hireloop",
					"POSTGRES_PASSWORD": "hireloop",
					"POSTGRES_DB":       "hireloop_test",
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60 * time.Second),
			}
			container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
				ContainerRequest: req,
				Started:          true,
			})
			if err != nil {
				poolErr = err
				return
			}
			host, err := container.Host(ctx)
			if err != nil {
				poolErr = err
				return
			}
			port, err := container.MappedPort(ctx, "5432")
			if err != nil {
				poolErr = err
				return
			}
			dsn = fmt.Sprintf("postgres://hireloop:hireloop@%s:%s/hireloop_test?sslmode=disable", host, port.Port())
		}

		testPool, poolErr = pgxpool.New(ctx, dsn)
		if poolErr != nil {
			return
		}
		poolErr = migrations.NewMigrator(testPool, zerolog.Nop()).MigrateFromFile(ctx, "../../../migrations/001_init.sql")
	})
	require.NoError(t, poolErr)
	return testPool
}

type fixture struct {
	ctx          context.Context
	pool         *pgxpool.Pool
	applications *ApplicationRepository
	jobs         *JobRepository
	companies    *CompanyRepository
	consultants  *ConsultantRepository

	employerID   int64
	companyID    int64
	consultantID int64
}

func newFixture(t *testing.T) *fixture {
	pool := setupTestDatabase(t)
	f := &fixture{
		ctx:          context.Background(),
		pool:         pool,
		applications: NewApplicationRepository(pool),
		jobs:         NewJobRepository(pool),
		companies:    NewCompanyRepository(pool),
		consultants:  NewConsultantRepository(pool),
	}

	f.employerID = f.user(t, models.RoleEmployer)
	company := &models.Company{Name: fmt.Sprintf("Acme %d", seq.Add(1)), Industry: "Software", Location: "Berlin", OwnerID: f.employerID}
	id, err := f.companies.CreateCompany(f.ctx, company, true)
	require.NoError(t, err)
	f.companyID = id

	consultant := &models.Consultant{UserID: f.user(t, models.RoleConsultant), CommissionRate: decimal.RequireFromString("0.15"), IsActive: true}
	f.consultantID, err = f.consultants.CreateConsultant(f.ctx, consultant)
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, role models.Role) int64 {
	id, err := NewUserRepository(f.pool).CreateUser(f.ctx, &models.User{
		Email:     fmt.Sprintf("user%d@hireloop.test", seq.Add(1)),
		Password:  "x",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  true,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) job(t *testing.T, status models.JobStatus, positions int) *models.Job {
	job := &models.Job{
		CompanyID:       f.companyID,
		Title:           "Backend Engineer",
		Description:     "Build services",
		EmploymentType:  models.EmploymentFullTime,
		ExperienceLevel: models.ExperienceMid,
		Currency:        "EUR",
		Status:          status,
		Positions:       positions,
		ConsultantID:    &f.consultantID,
		PostedBy:        f.employerID,
	}
	_, err := f.jobs.CreateJob(f.ctx, job)
	require.NoError(t, err)
	return job
}

func (f *fixture) apply(t *testing.T, job *models.Job) *models.Application {
	candidate := &models.CandidateProfile{UserID: f.user(t, models.RoleCandidate), Headline: "Go developer", OpenToWork: true}
	candidateID, err := NewCandidateRepository(f.pool).CreateProfile(f.ctx, candidate)
	require.NoError(t, err)

	a := &models.Application{JobID: job.ID, CandidateID: candidateID, ConsultantID: &f.consultantID, SubmittedAt: time.Now().UTC()}
	_, err = f.applications.CreateApplication(f.ctx, a, candidate.UserID)
	require.NoError(t, err)
	return a
}

func (f *fixture) hire(a *models.Application, from models.ApplicationStatus, fee string) (*models.StatusChangeResult, error) {
	return f.applications.ApplyStatusChange(f.ctx, &models.StatusChange{
		ApplicationID: a.ID,
		From:          from,
		To:            models.StatusHired,
		ChangedBy:     f.employerID,
		At:            time.Now().UTC(),
		JobID:         a.JobID,
		ConsultantID:  &f.consultantID,
		PlacementFee:  decimal.NewNullDecimal(decimal.RequireFromString(fee)),
	})
}

func (f *fixture) historyCount(t *testing.T, applicationID int64) int {
	history, err := f.applications.ListStatusHistory(f.ctx, applicationID)
	require.NoError(t, err)
	return len(history)
}

func TestHireFillsPositionsAndBooksPlacement(t *testing.T) {
	f := newFixture(t)
	job := f.job(t, models.JobStatusOpen, 2)
	first, second := f.apply(t, job), f.apply(t, job)

	res, err := f.hire(first, models.StatusSubmitted, "9000.00")
	require.NoError(t, err)
	assert.False(t, res.JobFilled)

	got, err := f.jobs.GetJobByID(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PositionsFilled)
	assert.Equal(t, models.JobStatusOpen, got.Status)

	res, err = f.hire(second, models.StatusSubmitted, "6000.50")
	require.NoError(t, err)
	assert.True(t, res.JobFilled)

	got, err = f.jobs.GetJobByID(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PositionsFilled)
	assert.Equal(t, models.JobStatusFilled, got.Status)

	k, err := f.consultants.GetConsultantByID(f.ctx, f.consultantID)
	require.NoError(t, err)
	assert.Equal(t, 2, k.TotalPlacements)
	assert.True(t, decimal.RequireFromString("15000.50").Equal(k.TotalFees), k.TotalFees.String())

	hired, err := f.applications.GetApplicationByID(f.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusHired, hired.Status)
	assert.NotNil(t, hired.HiredAt)
	assert.NotNil(t, hired.ReviewedAt)
	assert.Equal(t, 2, f.historyCount(t, second.ID))
}

func TestHireWithoutOpenPositionRollsBack(t *testing.T) {
	f := newFixture(t)
	job := f.job(t, models.JobStatusOpen, 1)
	first, second := f.apply(t, job), f.apply(t, job)

	_, err := f.hire(first, models.StatusSubmitted, "1000")
	require.NoError(t, err)

	_, err = f.hire(second, models.StatusSubmitted, "1000")
	assert.ErrorIs(t, err, apperrors.ErrNoOpenPositions)

	still, err := f.applications.GetApplicationByID(f.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, still.Status)
	assert.Nil(t, still.HiredAt)
	assert.Equal(t, 1, f.historyCount(t, second.ID))

	k, err := f.consultants.GetConsultantByID(f.ctx, f.consultantID)
	require.NoError(t, err)
	assert.Equal(t, 1, k.TotalPlacements)
	assert.True(t, decimal.RequireFromString("1000").Equal(k.TotalFees))
}

func TestHireOnClosedJobCountsWithoutFilling(t *testing.T) {
	f := newFixture(t)
	job := f.job(t, models.JobStatusClosed, 1)
	a := f.apply(t, job)

	res, err := f.hire(a, models.StatusSubmitted, "500")
	require.NoError(t, err)
	assert.False(t, res.JobFilled)

	got, err := f.jobs.GetJobByID(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PositionsFilled)
	assert.Equal(t, models.JobStatusClosed, got.Status)
}

func TestStaleStatusChangeConflicts(t *testing.T) {
	f := newFixture(t)
	a := f.apply(t, f.job(t, models.JobStatusOpen, 1))

	change := &models.StatusChange{
		ApplicationID: a.ID,
		From:          models.StatusSubmitted,
		To:            models.StatusUnderReview,
		ChangedBy:     f.employerID,
		At:            time.Now().UTC(),
	}
	_, err := f.applications.ApplyStatusChange(f.ctx, change)
	require.NoError(t, err)

	_, err = f.applications.ApplyStatusChange(f.ctx, change)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 2, f.historyCount(t, a.ID))
}

func TestConcurrentStatusChangesHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	a := f.apply(t, f.job(t, models.JobStatusOpen, 1))

	targets := []models.ApplicationStatus{models.StatusUnderReview, models.StatusRejected, models.StatusWithdrawn, models.StatusShortlisted}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, to := range targets {
		wg.Add(1)
		go func(i int, to models.ApplicationStatus) {
			defer wg.Done()
			_, errs[i] = f.applications.ApplyStatusChange(f.ctx, &models.StatusChange{
				ApplicationID: a.ID,
				From:          models.StatusSubmitted,
				To:            to,
				ChangedBy:     f.employerID,
				At:            time.Now().UTC(),
			})
		}(i, to)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 2, f.historyCount(t, a.ID))
}

func TestDuplicateApplicationIsRejected(t *testing.T) {
	f := newFixture(t)
	job := f.job(t, models.JobStatusOpen, 1)
	a := f.apply(t, job)

	dup := &models.Application{JobID: job.ID, CandidateID: a.CandidateID, SubmittedAt: time.Now().UTC()}
	_, err := f.applications.CreateApplication(f.ctx, dup, f.employerID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
}

func TestSearchCompaniesFilters(t *testing.T) {
	f := newFixture(t)
	tag := fmt.Sprintf("Zeta%d", seq.Add(1))
	for _, c := range []models.Company{
		{Name: tag + " Labs", Industry: "Biotech", Location: "Lisbon"},
		{Name: tag + " Works", Industry: "Software", Location: "Lisbon"},
		{Name: tag + " Foods", Industry: "Software", Location: "Porto"},
	} {
		c := c
		c.OwnerID = f.employerID
		_, err := f.companies.CreateCompany(f.ctx, &c, false)
		require.NoError(t, err)
	}

	found, total, err := f.companies.SearchCompanies(f.ctx, models.CompanyFilter{Name: tag, Industry: "Software", Page: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, found, 2)

	found, total, err = f.companies.SearchCompanies(f.ctx, models.CompanyFilter{Name: tag, Industry: "Software", Location: "lisbon", Page: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, tag+" Works", found[0].Name)

	verified := true
	_, total, err = f.companies.SearchCompanies(f.ctx, models.CompanyFilter{Name: tag, Verified: &verified, Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}
