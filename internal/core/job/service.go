package job

import (
	"context"
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

// Service は求人の検索と更新に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	paging search.Defaults
	cache  OpenJobsCache
}

// UseCase は求人ユースケースの公開インターフェースです。
type UseCase interface {
	Search(ctx context.Context, actor authz.Actor, in SearchInput) (*SearchResult, error)
	Create(ctx context.Context, actor authz.Actor, in CreateJobInput) (*Job, error)
	Delete(ctx context.Context, actor authz.Actor, in DeleteJobInput) error
	UpdateStatus(ctx context.Context, actor authz.Actor, in UpdateStatusInput) (*Job, error)
	ListAll(ctx context.Context, actor authz.Actor) ([]*Job, error)
}

// NewService は Service を生成します。cache が nil の場合は毎回件数を数えます。
func NewService(repo Repository, clock Clock, tx TransactionManager, paging search.Defaults, cache OpenJobsCache) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, paging: paging.OrDefault(), cache: cache}
}

// SearchInput は求人検索の入力です。
type SearchInput struct {
	Page   search.PageRequest
	Filter *RawFilter
}

// SearchResult は求人検索の結果です。TotalActiveJobs は検索条件に関係なく全体の OPEN 件数です。
type SearchResult struct {
	Page            search.Page[*Job]
	TotalActiveJobs int64
	AppliedFilters  AppliedFilters
}

// CreateJobInput は求人作成時の入力です。Status を省略すると OPEN になります。
type CreateJobInput struct {
	Title       string
	Description string
	Location    string
	Salary      float64
	Status      *string
}

// DeleteJobInput は求人削除時の入力です。
type DeleteJobInput struct {
	ID string
}

// UpdateStatusInput は求人ステータス変更時の入力です。
type UpdateStatusInput struct {
	ID     string
	Status string
}

// Search は条件に一致する求人をページ単位で取得します。
func (s *Service) Search(ctx context.Context, actor authz.Actor, in SearchInput) (*SearchResult, error) {
	if err := s.denial(ctx, authz.AuthorizeRole(actor, authz.SearchJobs)); err != nil {
		return nil, err
	}

	q, err := search.Resolve(in.Page, s.paging, Sortable)
	if err != nil {
		return nil, err
	}

	filter, err := NormalizeFilter(in.Filter)
	if err != nil {
		return nil, err
	}

	snap, cached := s.openJobsSnapshot(ctx)

	var result SearchResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		jobs, total, err := s.repo.Search(txCtx, filter, q)
		if err != nil {
			return err
		}
		result.Page = search.NewPage(jobs, q, total)

		open, err := s.openJobs(txCtx, snap, cached)
		if err != nil {
			return err
		}
		result.TotalActiveJobs = open
		return nil
	}); err != nil {
		return nil, err
	}

	result.AppliedFilters = filter.Applied()
	return &result, nil
}

// Create は actor の会社に属する求人を作成します。
func (s *Service) Create(ctx context.Context, actor authz.Actor, in CreateJobInput) (*Job, error) {
	if err := s.denial(ctx, authz.Authorize(actor, authz.CreateJob, authz.Resource{})); err != nil {
		return nil, err
	}

	job, err := s.buildJob(actor, in)
	if err != nil {
		return nil, err
	}

	var created *Job
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, job)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.FromContext(ctx).Info("job created", "job_id", created.ID, "company_id", created.CompanyID)
	return created, nil
}

// Delete は求人を削除します。雇用者は応募のない自社求人のみ削除できます。
func (s *Service) Delete(ctx context.Context, actor authz.Actor, in DeleteJobInput) error {
	if err := s.denial(ctx, authz.AuthorizeRole(actor, authz.DeleteJob)); err != nil {
		return err
	}
	if err := validateID(in.ID); err != nil {
		return err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}

		if err := s.denial(ctx, authz.Authorize(actor, authz.DeleteJob, existing.Resource())); err != nil {
			return err
		}

		return s.repo.Delete(txCtx, existing.ID)
	}); err != nil {
		return err
	}

	s.invalidate(ctx)
	logger.FromContext(ctx).Info("job deleted", "job_id", in.ID)
	return nil
}

// UpdateStatus は求人のステータスを変更します。遷移の制約はありません。
func (s *Service) UpdateStatus(ctx context.Context, actor authz.Actor, in UpdateStatusInput) (*Job, error) {
	if err := s.denial(ctx, authz.AuthorizeRole(actor, authz.UpdateJobStatus)); err != nil {
		return nil, err
	}
	if err := validateID(in.ID); err != nil {
		return nil, err
	}

	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	var (
		updated  *Job
		previous Status
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByIDForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}

		if err := s.denial(ctx, authz.Authorize(actor, authz.UpdateJobStatus, existing.Resource())); err != nil {
			return err
		}

		previous = existing.Status
		result, err := s.repo.UpdateStatus(txCtx, existing.ID, status)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	if previous != status {
		s.invalidate(ctx)
	}
	logger.FromContext(ctx).Info("job status changed", "job_id", updated.ID, "from", previous, "to", status)
	return updated, nil
}

// ListAll は全求人を投稿日時の降順で返します。
func (s *Service) ListAll(ctx context.Context, actor authz.Actor) ([]*Job, error) {
	if err := s.denial(ctx, authz.AuthorizeRole(actor, authz.ListAllJobs)); err != nil {
		return nil, err
	}

	var jobs []*Job
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListAll(txCtx)
		if err != nil {
			return err
		}
		jobs = result
		return nil
	}); err != nil {
		return nil, err
	}

	return jobs, nil
}

// RefreshOpenJobs は OPEN 件数を数え直してキャッシュに保存します。
func (s *Service) RefreshOpenJobs(ctx context.Context) (int64, error) {
	snap, err := s.cache.OpenJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("job: read open jobs: %w", err)
	}

	count, err := s.repo.CountByStatus(ctx, StatusOpen)
	if err != nil {
		return 0, err
	}
	if err := s.cache.StoreOpenJobs(ctx, snap.Generation, count); err != nil {
		return count, fmt.Errorf("job: store open jobs: %w", err)
	}
	return count, nil
}

// openJobsSnapshot はトランザクション開始前に呼び出します。
// 世代を件数集計より先に読むことで、集計後の無効化が保存を上書きしないようにします。
func (s *Service) openJobsSnapshot(ctx context.Context) (OpenJobsSnapshot, bool) {
	snap, err := s.cache.OpenJobs(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("open jobs cache unavailable", "error", err)
		return OpenJobsSnapshot{}, false
	}
	return snap, true
}

func (s *Service) openJobs(ctx context.Context, snap OpenJobsSnapshot, cached bool) (int64, error) {
	if snap.Hit {
		return snap.Count, nil
	}

	count, err := s.repo.CountByStatus(ctx, StatusOpen)
	if err != nil {
		return 0, err
	}
	if !cached {
		return count, nil
	}
	if err := s.cache.StoreOpenJobs(ctx, snap.Generation, count); err != nil {
		logger.FromContext(ctx).Warn("failed to store open jobs count", "error", err)
	}
	return count, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateOpenJobs(ctx); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate open jobs count", "error", err)
	}
}

func (s *Service) buildJob(actor authz.Actor, in CreateJobInput) (*Job, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, ErrInvalidDescription
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		return nil, ErrInvalidLocation
	}
	if !(in.Salary > 0) {
		return nil, ErrInvalidSalary
	}

	status := StatusOpen
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		parsed, err := ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	return &Job{
		Title:           title,
		Description:     description,
		Location:        location,
		Salary:          in.Salary,
		Status:          status,
		CompanyID:       actor.CompanyID,
		PostedByID:      actor.ID,
		PostedByName:    actor.Name,
		PosterCompanyID: actor.CompanyID,
		PostedAt:        s.clock.Now(),
	}, nil
}

func (s *Service) denial(ctx context.Context, d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	logger.FromContext(ctx).Warn("job operation denied", "violation", d.Violation, "reason", d.Reason)
	if d.Violation == authz.ViolationNoCompany {
		return ErrCompanyRequired
	}
	return d.Err()
}

func validateID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return nil
}
