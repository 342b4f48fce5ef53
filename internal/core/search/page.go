package search

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Direction はソート方向です。
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// PageRequest は呼び出し元が指定したページング条件です。nil は未指定を意味します。
type PageRequest struct {
	Page          *int
	Size          *int
	SortField     *string
	SortDirection *string
}

// Defaults はページ番号とサイズの既定値、およびサイズ上限です。
type Defaults struct {
	Page    int
	Size    int
	MaxSize int
}

// Sortable は検索対象ごとのソート可能項目と既定値を表します。
type Sortable struct {
	DefaultField     string
	DefaultDirection Direction
	Fields           []string
}

// Allows は field がソート対象として許可されているかを返します。
func (s Sortable) Allows(field string) bool {
	return slices.Contains(s.Fields, field)
}

// Query は既定値適用と検証を終えたページング条件です。
type Query struct {
	Page      int
	Size      int
	SortField string
	Direction Direction
}

// Offset は取得開始位置を返します。Resolve を通した Query では溢れません。
func (q Query) Offset() int {
	return q.Page * q.Size
}

// Resolve は PageRequest に既定値を適用し検証します。
// サイズは MaxSize で切り詰め、方向は "asc" (大文字小文字無視) のみ昇順として扱います。
func Resolve(req PageRequest, defaults Defaults, sortable Sortable) (Query, error) {
	q := Query{
		Page:      defaults.Page,
		Size:      defaults.Size,
		SortField: sortable.DefaultField,
		Direction: sortable.DefaultDirection,
	}
	if q.Direction == "" {
		q.Direction = Desc
	}

	if req.Page != nil {
		if *req.Page < 0 {
			return Query{}, ErrInvalidPage
		}
		q.Page = *req.Page
	}

	if req.Size != nil {
		if *req.Size <= 0 {
			return Query{}, ErrInvalidPageSize
		}
		q.Size = *req.Size
	}
	if defaults.MaxSize > 0 && q.Size > defaults.MaxSize {
		q.Size = defaults.MaxSize
	}
	// Offset が溢れないこと。
	if q.Size > 0 && q.Page > math.MaxInt/q.Size {
		return Query{}, ErrInvalidPage
	}

	if req.SortField != nil {
		field := strings.TrimSpace(*req.SortField)
		if field != "" {
			if !sortable.Allows(field) {
				return Query{}, fmt.Errorf("%w: %s", ErrInvalidSortField, field)
			}
			q.SortField = field
		}
	}

	if req.SortDirection != nil && strings.TrimSpace(*req.SortDirection) != "" {
		q.Direction = ParseDirection(*req.SortDirection)
	}

	return q, nil
}

// ParseDirection は "asc" のみを昇順とし、それ以外を降順として解釈します。
func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), "asc") {
		return Asc
	}
	return Desc
}

// Page は 1 ページ分の検索結果です。
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
}

// NewPage は総件数からページ数を計算して Page を生成します。
func NewPage[T any](items []T, q Query, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if q.Size > 0 {
		pages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	return Page[T]{
		Items:      items,
		Page:       q.Page,
		Size:       q.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// Map は Page の要素を変換します。
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return Page[U]{
		Items:      out,
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

// DefaultDefaults は設定が与えられない場合のページング既定値です。
var DefaultDefaults = Defaults{Page: 0, Size: 10, MaxSize: 100}

// OrDefault はサイズが未設定の場合に DefaultDefaults を返します。
func (d Defaults) OrDefault() Defaults {
	if d.Size <= 0 {
		return DefaultDefaults
	}
	return d
}
