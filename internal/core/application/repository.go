package application

import (
	"context"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

// Repository は応募エンティティの永続化を行うインターフェースです。
// Create は (JobID, ApplicantID) の一意制約違反を ErrDuplicateApplication として返します。
type Repository interface {
	Create(ctx context.Context, app *Application) (*Application, error)
	ExistsForJobAndApplicant(ctx context.Context, jobID, applicantID string) (bool, error)
	ListByJob(ctx context.Context, jobID string, status search.Optional[Status], q search.Query) ([]*Application, int64, error)
	ListAll(ctx context.Context) ([]*Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*Application, error)
}

// JobFinder は応募対象の求人を取得します。
type JobFinder interface {
	FindByID(ctx context.Context, id string) (*job.Job, error)
}

// Sortable は求人ごとの応募検索でソート可能な項目です。
var Sortable = search.Sortable{
	DefaultField:     "appliedAt",
	DefaultDirection: search.Desc,
	Fields:           []string{"appliedAt", "status"},
}
