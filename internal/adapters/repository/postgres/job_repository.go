package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	pgdb "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
)

const jobSelect = `
        SELECT j.id, j.title, j.description, j.location, j.salary, j.status,
               j.company_id, c.name, j.posted_by, u.name, COALESCE(pc.id::text, ''), j.posted_at,
               (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)
          FROM job_posts j
          JOIN companies c ON c.id = j.company_id
          JOIN users u ON u.id = j.posted_by
          LEFT JOIN companies pc ON pc.owner_id = j.posted_by`

const jobCount = `
        SELECT COUNT(*)
          FROM job_posts j
          JOIN companies c ON c.id = j.company_id`

var jobSortColumns = map[string]string{
	"postedDate":  "j.posted_at",
	"title":       "j.title",
	"salary":      "j.salary",
	"location":    "j.location",
	"status":      "j.status",
	"companyName": "c.name",
}

// JobRepository は PostgreSQL を利用した求人永続化の実装です。
type JobRepository struct {
	pool pgdb.Queryer
}

// NewJobRepository は JobRepository を生成します。
func NewJobRepository(pool pgdb.Queryer) *JobRepository {
	return &JobRepository{pool: pool}
}

// Create は求人を新規作成し、会社名と投稿者名を含めて返します。
func (r *JobRepository) Create(ctx context.Context, j *job.Job) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO job_posts (title, description, location, salary, status, company_id, posted_by, posted_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, title, description, location, salary, status, company_id, posted_by, posted_at
        )
        SELECT j.id, j.title, j.description, j.location, j.salary, j.status,
               j.company_id, c.name, j.posted_by, u.name, COALESCE(pc.id::text, ''), j.posted_at,
               0
          FROM inserted j
          JOIN companies c ON c.id = j.company_id
          JOIN users u ON u.id = j.posted_by
          LEFT JOIN companies pc ON pc.owner_id = j.posted_by
    `, j.Title, j.Description, j.Location, j.Salary, j.Status, j.CompanyID, j.PostedByID, j.PostedAt)

	created, err := scanJob(row)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	return created, nil
}

// FindByID は ID で求人を取得します。
func (r *JobRepository) FindByID(ctx context.Context, id string) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, jobSelect+`
         WHERE j.id = $1
         LIMIT 1
    `, id)

	found, err := scanJob(row)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	return found, nil
}

// FindByIDForUpdate は求人行をロックして取得します。トランザクション内で呼び出す必要があります。
func (r *JobRepository) FindByIDForUpdate(ctx context.Context, id string) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, jobSelect+`
         WHERE j.id = $1
         FOR UPDATE OF j
    `, id)

	found, err := scanJob(row)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	return found, nil
}

// UpdateStatus は求人のステータスを更新します。
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status job.Status) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `UPDATE job_posts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, job.ErrJobNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete は求人を削除します。応募は外部キーの ON DELETE CASCADE で削除されます。
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM job_posts WHERE id = $1`, id)
	if err != nil {
		return translateJobPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

// Search は条件に一致する求人の 1 ページ分と総件数を取得します。条件が空であれば全件が対象です。
func (r *JobRepository) Search(ctx context.Context, filter job.Filter, q search.Query) ([]*job.Job, int64, error) {
	var b whereBuilder
	if kw, ok := filter.Keyword.Get(); ok {
		p := b.next(containsPattern(kw))
		b.add("(j.title ILIKE " + p + " OR j.description ILIKE " + p + ")")
	}
	if loc, ok := filter.Location.Get(); ok {
		b.add("LOWER(j.location) = LOWER(" + b.next(loc) + ")")
	}
	if name, ok := filter.CompanyName.Get(); ok {
		b.add("c.name ILIKE " + b.next(containsPattern(name)))
	}
	if status, ok := filter.Status.Get(); ok {
		b.add("j.status = " + b.next(string(status)))
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	where := b.clause()

	var total int64
	if err := exec.QueryRow(ctx, jobCount+where, b.args...).Scan(&total); err != nil {
		return nil, 0, translateJobPgError(err)
	}

	query := jobSelect + where + orderBy(jobSortColumns, q, "j.id") + b.page(q)
	jobs, err := r.query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListAll は全求人を投稿日時の降順で取得します。
func (r *JobRepository) ListAll(ctx context.Context) ([]*job.Job, error) {
	return r.query(ctx, jobSelect+`
         ORDER BY j.posted_at DESC, j.id ASC
    `)
}

// CountByStatus は指定したステータスの求人数を返します。
func (r *JobRepository) CountByStatus(ctx context.Context, status job.Status) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var count int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM job_posts WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, translateJobPgError(err)
	}
	return count, nil
}

func (r *JobRepository) query(ctx context.Context, query string, args ...any) ([]*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		found, err := scanJob(rows)
		if err != nil {
			return nil, translateJobPgError(err)
		}
		jobs = append(jobs, found)
	}
	if err := rows.Err(); err != nil {
		return nil, translateJobPgError(err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (*job.Job, error) {
	var (
		j        job.Job
		status   string
		postedAt time.Time
		apps     int64
	)

	if err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.Location, &j.Salary, &status,
		&j.CompanyID, &j.CompanyName, &j.PostedByID, &j.PostedByName, &j.PosterCompanyID, &postedAt,
		&apps,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrJobNotFound
		}
		return nil, err
	}

	j.Status = job.Status(status)
	j.PostedAt = postedAt
	j.ApplicationCount = int(apps)
	return &j, nil
}

func translateJobPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return job.ErrCompanyRequired
	}
	return err
}
