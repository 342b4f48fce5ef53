package job

import "errors"

var (
	// ErrJobNotFound は求人が存在しない場合に返却されます。
	ErrJobNotFound = errors.New("job not found")
	// ErrCompanyRequired は会社に所属しない雇用者が求人を作成しようとした場合に返却されます。
	ErrCompanyRequired = errors.New("employer has no associated company")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidTitle はタイトルが空の場合に返却されます。
	ErrInvalidTitle = errors.New("title is required")
	// ErrInvalidDescription は説明が空の場合に返却されます。
	ErrInvalidDescription = errors.New("description is required")
	// ErrInvalidLocation は勤務地が空の場合に返却されます。
	ErrInvalidLocation = errors.New("location is required")
	// ErrInvalidSalary は給与が正の数でない場合に返却されます。
	ErrInvalidSalary = errors.New("salary must be positive")
	// ErrInvalidStatus はステータスが不正な場合に返却されます。
	ErrInvalidStatus = errors.New("invalid job status")
)
