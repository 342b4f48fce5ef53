package search

import "strings"

// Optional は「指定なし」と「値あり」を区別するフィルター値です。
type Optional[T any] struct {
	value T
	set   bool
}

// Some は値ありの Optional を返します。
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None は指定なしの Optional を返します。
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get は値と指定有無を返します。
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet は値が指定されているかを返します。
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Text は入力文字列の前後空白を除去し、空であれば指定なしとして扱います。
func Text(raw *string) Optional[string] {
	if raw == nil {
		return None[string]()
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return None[string]()
	}
	return Some(trimmed)
}

// Parse は入力文字列を parse で列挙値へ変換します。空入力は指定なしになります。
func Parse[T any](raw *string, parse func(string) (T, error)) (Optional[T], error) {
	text, ok := Text(raw).Get()
	if !ok {
		return None[T](), nil
	}
	v, err := parse(text)
	if err != nil {
		return None[T](), err
	}
	return Some(v), nil
}
