package job

import "github.com/ogurasousui/jobboard-clean-arch/internal/core/search"

// RawFilter は呼び出し元から受け取った未検証の検索条件です。
type RawFilter struct {
	Keyword     *string
	Location    *string
	Status      *string
	CompanyName *string
}

// Filter は正規化済みの検索条件です。未指定の項目は制約なしを意味します。
// Keyword はタイトルまたは説明、CompanyName は会社名に対する部分一致、Location は完全一致で、
// いずれも大文字小文字を区別しません。
type Filter struct {
	Keyword     search.Optional[string]
	Location    search.Optional[string]
	CompanyName search.Optional[string]
	Status      search.Optional[Status]
}

// NormalizeFilter は raw を正規化します。nil は全件一致の条件になります。
func NormalizeFilter(raw *RawFilter) (Filter, error) {
	if raw == nil {
		return Filter{}, nil
	}

	status, err := search.Parse(raw.Status, ParseStatus)
	if err != nil {
		return Filter{}, err
	}

	return Filter{
		Keyword:     search.Text(raw.Keyword),
		Location:    search.Text(raw.Location),
		CompanyName: search.Text(raw.CompanyName),
		Status:      status,
	}, nil
}

// IsEmpty はいずれの項目も指定されていないかを返します。
func (f Filter) IsEmpty() bool {
	return !f.Keyword.IsSet() && !f.Location.IsSet() && !f.CompanyName.IsSet() && !f.Status.IsSet()
}

// AppliedFilters は実際に適用した検索条件です。未指定の項目は nil になります。
type AppliedFilters struct {
	Keyword     *string
	Location    *string
	Status      *string
	CompanyName *string
}

// Applied は f を応答用の AppliedFilters に変換します。
func (f Filter) Applied() AppliedFilters {
	var out AppliedFilters
	if v, ok := f.Keyword.Get(); ok {
		out.Keyword = &v
	}
	if v, ok := f.Location.Get(); ok {
		out.Location = &v
	}
	if v, ok := f.CompanyName.Get(); ok {
		out.CompanyName = &v
	}
	if v, ok := f.Status.Get(); ok {
		s := string(v)
		out.Status = &s
	}
	return out
}
