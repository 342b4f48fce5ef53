package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

var jobColumns = []string{
	"id", "title", "description", "location", "salary", "status",
	"company_id", "company_name", "posted_by", "posted_by_name", "poster_company_id", "posted_at",
	"application_count",
}

func newJobMock(t *testing.T) (pgxmock.PgxPoolIface, *JobRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewJobRepository(mock)
}

func TestJobRepository_Search_WithFilters(t *testing.T) {
	t.Parallel()

	mock, repo := newJobMock(t)
	postedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	where := `WHERE (j.title ILIKE $1 OR j.description ILIKE $1) AND LOWER(j.location) = LOWER($2) AND j.status = $3`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM job_posts j JOIN companies c ON c.id = j.company_id `+where)).
		WithArgs("%go%", "Berlin", "OPEN").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery(regexp.QuoteMeta(where+` ORDER BY j.salary ASC, j.id ASC LIMIT $4 OFFSET $5`)).
		WithArgs("%go%", "Berlin", "OPEN", 10, 0).
		WillReturnRows(pgxmock.NewRows(jobColumns).
			AddRow("job-1", "Go Developer", "Build services", "Berlin", 85000.0, "OPEN",
				"company-1", "Acme", "user-2", "Alice", "company-1", postedAt, int64(2)))

	filter := job.Filter{
		Keyword:  search.Some("go"),
		Location: search.Some("Berlin"),
		Status:   search.Some(job.StatusOpen),
	}
	jobs, total, err := repo.Search(context.Background(), filter, search.Query{Page: 0, Size: 10, SortField: "salary", Direction: search.Asc})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if total != 1 || len(jobs) != 1 {
		t.Fatalf("expected 1 job of 1, got %d of %d", len(jobs), total)
	}
	got := jobs[0]
	if got.Status != job.StatusOpen || got.ApplicationCount != 2 || got.CompanyName != "Acme" || got.PosterCompanyID != "company-1" {
		t.Fatalf("unexpected job %+v", got)
	}
	if !got.PostedAt.Equal(postedAt) {
		t.Fatalf("unexpected posted_at %v", got.PostedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobRepository_Search_Unfiltered(t *testing.T) {
	t.Parallel()

	mock, repo := newJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM job_posts j JOIN companies c ON c.id = j.company_id`)).
		WithArgs().
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))

	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN companies pc ON pc.owner_id = j.posted_by ORDER BY j.posted_at DESC, j.id ASC LIMIT $1 OFFSET $2`)).
		WithArgs(5, 10).
		WillReturnRows(pgxmock.NewRows(jobColumns))

	jobs, total, err := repo.Search(context.Background(), job.Filter{}, search.Query{Page: 2, Size: 5, SortField: "postedDate", Direction: search.Desc})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if total != 0 || len(jobs) != 0 {
		t.Fatalf("expected empty result, got %d of %d", len(jobs), total)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobRepository_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	mock, repo := newJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE j.id = $1`)).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(jobColumns))

	if _, err := repo.FindByID(context.Background(), "missing"); !errors.Is(err, job.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobRepository_Create_MissingCompany(t *testing.T) {
	t.Parallel()

	mock, repo := newJobMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO job_posts`)).
		WithArgs("Go Developer", "Build services", "Berlin", 85000.0, job.StatusOpen, "company-x", "user-2", now).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

	_, err := repo.Create(context.Background(), &job.Job{
		Title: "Go Developer", Description: "Build services", Location: "Berlin", Salary: 85000,
		Status: job.StatusOpen, CompanyID: "company-x", PostedByID: "user-2", PostedAt: now,
	})
	if !errors.Is(err, job.ErrCompanyRequired) {
		t.Fatalf("expected ErrCompanyRequired, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobRepository_UpdateStatus(t *testing.T) {
	t.Parallel()

	mock, repo := newJobMock(t)
	postedAt := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE job_posts SET status = $1 WHERE id = $2`)).
		WithArgs(job.StatusClosed, "job-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE j.id = $1`)).
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows(jobColumns).
			AddRow("job-1", "Go Developer", "Build services", "Berlin", 85000.0, "CLOSED",
				"company-1", "Acme", "user-2", "Alice", "company-1", postedAt, int64(0)))

	updated, err := repo.UpdateStatus(context.Background(), "job-1", job.StatusClosed)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != job.StatusClosed {
		t.Fatalf("expected CLOSED, got %s", updated.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobRepository_Delete_NotFound(t *testing.T) {
	t.Parallel()

	mock, repo := newJobMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM job_posts WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, job.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobRepository_CountByStatus(t *testing.T) {
	t.Parallel()

	mock, repo := newJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM job_posts WHERE status = $1`)).
		WithArgs(job.StatusOpen).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.CountByStatus(context.Background(), job.StatusOpen)
	if err != nil {
		t.Fatalf("CountByStatus returned error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
