package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

var companyColumns = []string{"id", "name", "description", "location", "owner_id", "owner_name", "created_at", "updated_at"}

func TestScanCompany_Success(t *testing.T) {
	t.Parallel()

	desc := "Sample"
	createdAt := time.Now().UTC()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 8 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "company-1"
		*(dest[1].(*string)) = "Acme"

		d := dest[2].(*sql.NullString)
		d.String = desc
		d.Valid = true

		*(dest[3].(*string)) = "Berlin"
		*(dest[4].(*string)) = "user-1"
		*(dest[5].(*string)) = "Alice"
		*(dest[6].(*time.Time)) = createdAt
		*(dest[7].(*time.Time)) = createdAt
		return nil
	}}

	c, err := scanCompany(row)
	if err != nil {
		t.Fatalf("scanCompany returned error: %v", err)
	}

	if c.Description == nil || *c.Description != desc {
		t.Fatalf("expected description %s, got %+v", desc, c.Description)
	}
	if c.OwnerID != "user-1" || c.OwnerName != "Alice" {
		t.Fatalf("unexpected owner %s / %s", c.OwnerID, c.OwnerName)
	}
}

func TestScanCompany_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanCompany(row); !errors.Is(err, company.ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestTranslateCompanyPgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "companies_owner_id_key"}
	if !errors.Is(translateCompanyPgError(pgErr), company.ErrCompanyAlreadyOwned) {
		t.Fatalf("expected already owned error mapping")
	}

	otherErr := errors.New("random")
	if translateCompanyPgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestCompanyRepository_List(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewCompanyRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM companies`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	now := time.Now().UTC()
	rows := pgxmock.NewRows(companyColumns).
		AddRow("company-1", "Acme", nil, "Berlin", "user-1", "Alice", now, now).
		AddRow("company-2", "Globex", nil, "Paris", "user-2", "Bob", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN users u ON u.id = c.owner_id ORDER BY c.name ASC, c.id ASC LIMIT $1 OFFSET $2`)).
		WithArgs(2, 2).
		WillReturnRows(rows)

	companies, total, err := repo.List(context.Background(), search.Query{Page: 1, Size: 2, SortField: "name", Direction: search.Asc})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(companies) != 2 || total != 3 {
		t.Fatalf("expected 2 companies of 3, got %d of %d", len(companies), total)
	}
	if companies[0].Description != nil {
		t.Fatalf("expected nil description, got %v", *companies[0].Description)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompanyRepository_Create_AlreadyOwned(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewCompanyRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO companies`)).
		WithArgs("Acme", nil, "Berlin", "user-1", now, now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	_, err = repo.Create(context.Background(), &company.Company{
		Name: "Acme", Location: "Berlin", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, company.ErrCompanyAlreadyOwned) {
		t.Fatalf("expected ErrCompanyAlreadyOwned, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
