package company

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/authz"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は会社に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	paging search.Defaults
}

// UseCase は会社ユースケースの公開インターフェースです。
type UseCase interface {
	CreateCompany(ctx context.Context, actor authz.Actor, in CreateCompanyInput) (*Company, error)
	GetCompany(ctx context.Context, in GetCompanyInput) (*Company, error)
	ListCompanies(ctx context.Context, in ListCompaniesInput) (*search.Page[*Company], error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, paging search.Defaults) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, paging: paging.OrDefault()}
}

// CreateCompanyInput は会社作成時の入力です。
type CreateCompanyInput struct {
	Name        string
	Description *string
	Location    string
}

// GetCompanyInput は会社取得時の入力です。
type GetCompanyInput struct {
	ID string
}

// ListCompaniesInput は一覧取得時の入力です。
type ListCompaniesInput struct {
	Page search.PageRequest
}

// CreateCompany は actor が所有する会社を作成します。雇用者は会社を一つしか所有できません。
func (s *Service) CreateCompany(ctx context.Context, actor authz.Actor, in CreateCompanyInput) (*Company, error) {
	if err := denial(ctx, authz.Authorize(actor, authz.CreateCompany, authz.Resource{})); err != nil {
		return nil, err
	}

	name, err := normalizeRequired(in.Name, ErrInvalidName)
	if err != nil {
		return nil, err
	}
	location, err := normalizeRequired(in.Location, ErrInvalidLocation)
	if err != nil {
		return nil, err
	}
	description := normalizeDescription(in.Description)

	var created *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureNotOwned(txCtx, actor.ID); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Company{
			Name:        name,
			Description: description,
			Location:    location,
			OwnerID:     actor.ID,
			OwnerName:   actor.Name,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("company created", "company_id", created.ID)
	return created, nil
}

// GetCompany は ID で会社を取得します。
func (s *Service) GetCompany(ctx context.Context, in GetCompanyInput) (*Company, error) {
	if _, err := uuid.Parse(strings.TrimSpace(in.ID)); err != nil {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var company *Company
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		company = result
		return nil
	}); err != nil {
		return nil, err
	}

	return company, nil
}

// ListCompanies は会社の一覧をページ単位で取得します。
func (s *Service) ListCompanies(ctx context.Context, in ListCompaniesInput) (*search.Page[*Company], error) {
	q, err := search.Resolve(in.Page, s.paging, Sortable)
	if err != nil {
		return nil, err
	}

	var page search.Page[*Company]
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		companies, total, err := s.repo.List(txCtx, q)
		if err != nil {
			return err
		}
		page = search.NewPage(companies, q, total)
		return nil
	}); err != nil {
		return nil, err
	}

	return &page, nil
}

func (s *Service) ensureNotOwned(ctx context.Context, ownerID string) error {
	company, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil && !errors.Is(err, ErrCompanyNotFound) {
		return err
	}
	if company != nil {
		return ErrCompanyAlreadyOwned
	}
	return nil
}

func denial(ctx context.Context, d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	logger.FromContext(ctx).Warn("company operation denied", "violation", d.Violation, "reason", d.Reason)
	if d.Violation == authz.ViolationHasCompany {
		return ErrCompanyAlreadyOwned
	}
	return d.Err()
}

func normalizeRequired(raw string, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalid
	}
	return trimmed, nil
}

func normalizeDescription(raw *string) *string {
	if raw == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}

	desc := trimmed
	return &desc
}
