package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/application"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	pgdb "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
)

const applicationSelect = `
        SELECT a.id, a.job_id, j.title, a.applicant_id, u.name, a.resume_url, a.status, a.applied_at
          FROM applications a
          JOIN job_posts j ON j.id = a.job_id
          JOIN users u ON u.id = a.applicant_id`

var applicationSortColumns = map[string]string{
	"appliedAt": "a.applied_at",
	"status":    "a.status",
}

// ApplicationRepository は PostgreSQL を利用した応募永続化の実装です。
type ApplicationRepository struct {
	pool pgdb.Queryer
}

// NewApplicationRepository は ApplicationRepository を生成します。
func NewApplicationRepository(pool pgdb.Queryer) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create は応募を新規作成します。(job_id, applicant_id) の一意制約違反は重複応募として扱います。
func (r *ApplicationRepository) Create(ctx context.Context, a *application.Application) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO applications (job_id, applicant_id, resume_url, status, applied_at)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, job_id, applicant_id, resume_url, status, applied_at
        )
        SELECT i.id, i.job_id, j.title, i.applicant_id, u.name, i.resume_url, i.status, i.applied_at
          FROM inserted i
          JOIN job_posts j ON j.id = i.job_id
          JOIN users u ON u.id = i.applicant_id
    `, a.JobID, a.ApplicantID, a.ResumeURL, a.Status, a.AppliedAt)

	created, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return created, nil
}

// ExistsForJobAndApplicant は応募済みかを返します。
func (r *ApplicationRepository) ExistsForJobAndApplicant(ctx context.Context, jobID, applicantID string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var exists bool
	if err := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM applications WHERE job_id = $1 AND applicant_id = $2
        )
    `, jobID, applicantID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByJob は求人に対する応募の 1 ページ分と総件数を取得します。
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string, status search.Optional[application.Status], q search.Query) ([]*application.Application, int64, error) {
	var b whereBuilder
	b.add("a.job_id = " + b.next(jobID))
	if st, ok := status.Get(); ok {
		b.add("a.status = " + b.next(string(st)))
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	where := b.clause()

	var total int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM applications a`+where, b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := applicationSelect + where + orderBy(applicationSortColumns, q, "a.id") + b.page(q)
	apps, err := r.query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// ListAll は全応募を応募日時の降順で取得します。
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]*application.Application, error) {
	return r.query(ctx, applicationSelect+`
         ORDER BY a.applied_at DESC, a.id ASC
    `)
}

// ListByApplicant は応募者自身の応募を応募日時の降順で取得します。
func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]*application.Application, error) {
	return r.query(ctx, applicationSelect+`
         WHERE a.applicant_id = $1
         ORDER BY a.applied_at DESC, a.id ASC
    `, applicantID)
}

func (r *ApplicationRepository) query(ctx context.Context, query string, args ...any) ([]*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	defer rows.Close()

	var apps []*application.Application
	for rows.Next() {
		found, err := scanApplication(rows)
		if err != nil {
			return nil, translateApplicationPgError(err)
		}
		apps = append(apps, found)
	}
	if err := rows.Err(); err != nil {
		return nil, translateApplicationPgError(err)
	}
	return apps, nil
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var (
		a         application.Application
		status    string
		appliedAt time.Time
	)

	if err := row.Scan(&a.ID, &a.JobID, &a.JobTitle, &a.ApplicantID, &a.ApplicantName, &a.ResumeURL, &status, &appliedAt); err != nil {
		return nil, err
	}

	a.Status = application.Status(status)
	a.AppliedAt = appliedAt
	return &a, nil
}

func translateApplicationPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return application.ErrDuplicateApplication
		case foreignKeyViolationCode:
			return job.ErrJobNotFound
		}
	}
	return err
}
