//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/middleware"
	repo "github.com/ogurasousui/jobboard-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/application"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/authz"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

func TestJobBoardScenario(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	tx := pg.NewTransactionManager(pool)
	paging := search.Defaults{Page: 0, Size: 10, MaxSize: 100}

	userSvc := user.NewService(repo.NewUserRepository(pool), nil)
	companySvc := company.NewService(repo.NewCompanyRepository(pool), nil, tx, paging)
	jobRepo := repo.NewJobRepository(pool)
	jobSvc := job.NewService(jobRepo, nil, tx, paging, nil)
	appSvc := application.NewService(repo.NewApplicationRepository(pool), jobRepo, nil, tx, paging)

	newActor := func(role user.Role) authz.Actor {
		t.Helper()
		u, err := userSvc.CreateUser(ctx, user.CreateUserInput{
			Email: uuid.NewString() + "@integration.local",
			Name:  string(role),
			Role:  string(role),
		})
		if err != nil {
			t.Fatalf("CreateUser error: %v", err)
		}
		return middleware.ActorFromUser(u)
	}
	reload := func(a authz.Actor) authz.Actor {
		t.Helper()
		u, err := userSvc.GetUser(ctx, user.GetUserInput{ID: a.ID})
		if err != nil {
			t.Fatalf("GetUser error: %v", err)
		}
		return middleware.ActorFromUser(u)
	}

	employer := newActor(user.RoleEmployer)
	other := newActor(user.RoleEmployer)
	seeker := newActor(user.RoleJobSeeker)
	admin := newActor(user.RoleAdmin)

	if _, err := jobSvc.Create(ctx, employer, job.CreateJobInput{Title: "T", Description: "D", Location: "L", Salary: 1}); !errors.Is(err, job.ErrCompanyRequired) {
		t.Fatalf("expected ErrCompanyRequired before company exists, got %v", err)
	}

	if _, err := companySvc.CreateCompany(ctx, employer, company.CreateCompanyInput{Name: "Acme", Location: "Berlin"}); err != nil {
		t.Fatalf("CreateCompany error: %v", err)
	}
	employer = reload(employer)
	if !employer.HasCompany() {
		t.Fatal("employer should own the created company")
	}
	if _, err := companySvc.CreateCompany(ctx, employer, company.CreateCompanyInput{Name: "Acme 2", Location: "Berlin"}); !errors.Is(err, company.ErrCompanyAlreadyOwned) {
		t.Fatalf("expected ErrCompanyAlreadyOwned, got %v", err)
	}

	posted, err := jobSvc.Create(ctx, employer, job.CreateJobInput{
		Title:       "Go Developer",
		Description: "Build services",
		Location:    "Berlin",
		Salary:      85000,
	})
	if err != nil {
		t.Fatalf("Create job error: %v", err)
	}
	if posted.Status != job.StatusOpen {
		t.Fatalf("expected OPEN, got %s", posted.Status)
	}

	applied, err := appSvc.Apply(ctx, seeker, application.ApplyInput{JobID: posted.ID, ResumeURL: "http://r/1"})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if applied.Status != application.StatusApplied {
		t.Fatalf("expected APPLIED, got %s", applied.Status)
	}
	if _, err := appSvc.Apply(ctx, seeker, application.ApplyInput{JobID: posted.ID, ResumeURL: "http://r/2"}); !errors.Is(err, application.ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}

	page, err := appSvc.SearchForJob(ctx, employer, application.SearchForJobInput{JobID: posted.ID})
	if err != nil {
		t.Fatalf("SearchForJob error: %v", err)
	}
	if page.TotalItems != 1 || len(page.Items) != 1 || page.Items[0].ApplicantID != seeker.ID {
		t.Fatalf("expected exactly the seeker's application, got %+v", page)
	}

	if _, err := appSvc.SearchForJob(ctx, other, application.SearchForJobInput{JobID: posted.ID}); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected other employer to be denied, got %v", err)
	}

	keyword := "developer"
	result, err := jobSvc.Search(ctx, seeker, job.SearchInput{Filter: &job.RawFilter{Keyword: &keyword}})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if result.Page.TotalItems != 1 || result.TotalActiveJobs != 1 {
		t.Fatalf("unexpected search result %+v", result)
	}

	var denied *authz.DeniedError
	if err := jobSvc.Delete(ctx, employer, job.DeleteJobInput{ID: posted.ID}); !errors.As(err, &denied) || denied.Violation != authz.ViolationDependents {
		t.Fatalf("expected delete to be denied by dependents, got %v", err)
	}

	if err := jobSvc.Delete(ctx, admin, job.DeleteJobInput{ID: posted.ID}); err != nil {
		t.Fatalf("admin Delete error: %v", err)
	}
	mine, err := appSvc.ListForApplicant(ctx, seeker)
	if err != nil {
		t.Fatalf("ListForApplicant error: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("expected applications to be removed with the job, got %d", len(mine))
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}
