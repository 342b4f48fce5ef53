package job

import (
	"context"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

// Repository は求人エンティティの永続化を行うインターフェースです。
// 取得系はいずれも会社名・投稿者名・投稿者の所属会社・応募件数を含めて返します。
type Repository interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	FindByID(ctx context.Context, id string) (*Job, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Job, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Job, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter Filter, q search.Query) ([]*Job, int64, error)
	ListAll(ctx context.Context) ([]*Job, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}

// OpenJobsSnapshot はキャッシュの読み取り結果です。
// Generation は無効化のたびに進む世代番号で、件数を保存するときにそのまま渡します。
type OpenJobsSnapshot struct {
	Count      int64
	Generation int64
	Hit        bool
}

// OpenJobsCache は公開中求人数のキャッシュです。
// StoreOpenJobs に渡した世代がその後の無効化で古くなった場合、保存した件数は読み取り時にヒットしません。
type OpenJobsCache interface {
	OpenJobs(ctx context.Context) (OpenJobsSnapshot, error)
	StoreOpenJobs(ctx context.Context, generation, count int64) error
	InvalidateOpenJobs(ctx context.Context) error
}

type noopCache struct{}

func (noopCache) OpenJobs(context.Context) (OpenJobsSnapshot, error) { return OpenJobsSnapshot{}, nil }
func (noopCache) StoreOpenJobs(context.Context, int64, int64) error  { return nil }
func (noopCache) InvalidateOpenJobs(context.Context) error           { return nil }

// Sortable は求人検索でソート可能な項目です。
var Sortable = search.Sortable{
	DefaultField:     "postedDate",
	DefaultDirection: search.Desc,
	Fields:           []string{"postedDate", "title", "salary", "location", "status", "companyName"},
}
