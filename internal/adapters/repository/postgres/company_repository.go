package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	pgdb "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
)

const companySelect = `
        SELECT c.id, c.name, c.description, c.location, c.owner_id, u.name, c.created_at, c.updated_at
          FROM companies c
          JOIN users u ON u.id = c.owner_id`

var companySortColumns = map[string]string{
	"createdAt": "c.created_at",
	"name":      "c.name",
	"location":  "c.location",
}

// CompanyRepository は PostgreSQL を利用した会社永続化の実装です。
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Create は会社を新規作成します。
func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO companies (name, description, location, owner_id, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, name, description, location, owner_id, created_at, updated_at
        )
        SELECT i.id, i.name, i.description, i.location, i.owner_id, u.name, i.created_at, i.updated_at
          FROM inserted i
          JOIN users u ON u.id = i.owner_id
    `, c.Name, nullableString(c.Description), c.Location, c.OwnerID, c.CreatedAt, c.UpdatedAt)

	created, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return created, nil
}

// FindByID は ID で会社を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, companySelect+`
         WHERE c.id = $1
         LIMIT 1
    `, id)

	found, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

// FindByOwner は所有者で会社を取得します。
func (r *CompanyRepository) FindByOwner(ctx context.Context, ownerID string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, companySelect+`
         WHERE c.owner_id = $1
         LIMIT 1
    `, ownerID)

	found, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

// List は会社の一覧と総件数を取得します。
func (r *CompanyRepository) List(ctx context.Context, q search.Query) ([]*company.Company, int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var total int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&total); err != nil {
		return nil, 0, err
	}

	var b whereBuilder
	query := companySelect + orderBy(companySortColumns, q, "c.id") + b.page(q)

	rows, err := exec.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, translateCompanyPgError(err)
	}
	defer rows.Close()

	var companies []*company.Company
	for rows.Next() {
		found, err := scanCompany(rows)
		if err != nil {
			return nil, 0, translateCompanyPgError(err)
		}
		companies = append(companies, found)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translateCompanyPgError(err)
	}

	return companies, total, nil
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		c                    company.Company
		description          sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&c.ID, &c.Name, &description, &c.Location, &c.OwnerID, &c.OwnerName, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	if description.Valid {
		desc := description.String
		c.Description = &desc
	}
	c.CreatedAt = createdAt
	c.UpdatedAt = updatedAt
	return &c, nil
}

func translateCompanyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return company.ErrCompanyAlreadyOwned
	}
	return err
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
