package application

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

// Service は応募の検索と作成に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	jobs   JobFinder
	clock  Clock
	tx     TransactionManager
	paging search.Defaults
}

// UseCase は応募ユースケースの公開インターフェースです。
type UseCase interface {
	Apply(ctx context.Context, actor authz.Actor, in ApplyInput) (*Application, error)
	SearchForJob(ctx context.Context, actor authz.Actor, in SearchForJobInput) (*search.Page[*Application], error)
	ListAll(ctx context.Context, actor authz.Actor) ([]*Application, error)
	ListForApplicant(ctx context.Context, actor authz.Actor) ([]*Application, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, jobs JobFinder, clock Clock, tx TransactionManager, paging search.Defaults) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, jobs: jobs, clock: clock, tx: tx, paging: paging.OrDefault()}
}

// ApplyInput は応募時の入力です。
type ApplyInput struct {
	JobID     string
	ResumeURL string
}

// SearchForJobInput は求人ごとの応募検索の入力です。
type SearchForJobInput struct {
	JobID  string
	Page   search.PageRequest
	Status *string
}

// Apply は actor として求人に応募します。同じ求人への二重応募は ErrDuplicateApplication になります。
func (s *Service) Apply(ctx context.Context, actor authz.Actor, in ApplyInput) (*Application, error) {
	if err := s.denial(ctx, authz.AuthorizeRole(actor, authz.Apply)); err != nil {
		return nil, err
	}

	jobID, err := parseJobID(in.JobID)
	if err != nil {
		return nil, err
	}
	resume := strings.TrimSpace(in.ResumeURL)
	if resume == "" {
		return nil, ErrInvalidResumeURL
	}

	var created *Application
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		target, err := s.jobs.FindByID(txCtx, jobID)
		if err != nil {
			return err
		}

		exists, err := s.repo.ExistsForJobAndApplicant(txCtx, target.ID, actor.ID)
		if err != nil {
			return err
		}
		if err := s.denial(ctx, authz.Authorize(actor, authz.Apply, authz.Resource{AlreadyApplied: exists})); err != nil {
			return err
		}

		result, err := s.repo.Create(txCtx, &Application{
			JobID:         target.ID,
			JobTitle:      target.Title,
			ApplicantID:   actor.ID,
			ApplicantName: actor.Name,
			ResumeURL:     resume,
			Status:        StatusApplied,
			AppliedAt:     s.clock.Now(),
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("application submitted", "application_id", created.ID, "job_id", created.JobID)
	return created, nil
}

// SearchForJob は求人に対する応募をページ単位で取得します。雇用者は自社の自分の求人のみ参照できます。
func (s *Service) SearchForJob(ctx context.Context, actor authz.Actor, in SearchForJobInput) (*search.Page[*Application], error) {
	if err := s.denial(ctx, authz.AuthorizeRole(actor, authz.SearchJobApplications)); err != nil {
		return nil, err
	}

	jobID, err := parseJobID(in.JobID)
	if err != nil {
		return nil, err
	}

	q, err := search.Resolve(in.Page, s.paging, Sortable)
	if err != nil {
		return nil, err
	}

	status, err := search.Parse(in.Status, ParseStatus)
	if err != nil {
		return nil, err
	}

	var page search.Page[*Application]
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		target, err := s.jobs.FindByID(txCtx, jobID)
		if err != nil {
			return err
		}

		if err := s.denial(ctx, authz.Authorize(actor, authz.SearchJobApplications, target.Resource())); err != nil {
			return err
		}

		apps, total, err := s.repo.ListByJob(txCtx, target.ID, status, q)
		if err != nil {
			return err
		}
		page = search.NewPage(apps, q, total)
		return nil
	}); err != nil {
		return nil, err
	}

	return &page, nil
}

// ListAll は全応募を応募日時の降順で返します。
func (s *Service) ListAll(ctx context.Context, actor authz.Actor) ([]*Application, error) {
	if err := s.denial(ctx, authz.AuthorizeRole(actor, authz.ListAllApplications)); err != nil {
		return nil, err
	}
	return s.list(ctx, func(txCtx context.Context) ([]*Application, error) {
		return s.repo.ListAll(txCtx)
	})
}

// ListForApplicant は actor 自身の応募を全件返します。
func (s *Service) ListForApplicant(ctx context.Context, actor authz.Actor) ([]*Application, error) {
	if err := s.denial(ctx, authz.AuthorizeRole(actor, authz.ListOwnApplications)); err != nil {
		return nil, err
	}
	return s.list(ctx, func(txCtx context.Context) ([]*Application, error) {
		return s.repo.ListByApplicant(txCtx, actor.ID)
	})
}

func (s *Service) list(ctx context.Context, fn func(context.Context) ([]*Application, error)) ([]*Application, error) {
	var apps []*Application
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := fn(txCtx)
		if err != nil {
			return err
		}
		apps = result
		return nil
	}); err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *Service) denial(ctx context.Context, d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	logger.FromContext(ctx).Warn("application operation denied", "violation", d.Violation, "reason", d.Reason)
	if d.Violation == authz.ViolationDuplicate {
		return ErrDuplicateApplication
	}
	return d.Err()
}

func parseJobID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("job id: %w", ErrInvalidJobID)
	}
	return id, nil
}
