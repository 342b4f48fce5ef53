package search

import "errors"

var (
	// ErrInvalidPage はページ番号が負の場合、または取得開始位置が int の範囲を超える場合に返却されます。
	ErrInvalidPage = errors.New("search: page out of range")
	// ErrInvalidPageSize はページサイズが 0 以下の場合に返却されます。
	ErrInvalidPageSize = errors.New("search: page size must be positive")
	// ErrInvalidSortField はソート対象として許可されていない項目が指定された場合に返却されます。
	ErrInvalidSortField = errors.New("search: unsupported sort field")
)
