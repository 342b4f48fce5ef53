package application

import "errors"

var (
	// ErrDuplicateApplication は同じ求人へ二重に応募した場合に返却されます。
	ErrDuplicateApplication = errors.New("already applied to this job")
	// ErrInvalidJobID は求人 ID が不正な場合に返却されます。
	ErrInvalidJobID = errors.New("invalid job id")
	// ErrInvalidResumeURL は履歴書の参照先が空の場合に返却されます。
	ErrInvalidResumeURL = errors.New("resume url is required")
	// ErrInvalidStatus はステータスが不正な場合に返却されます。
	ErrInvalidStatus = errors.New("invalid application status")
)
