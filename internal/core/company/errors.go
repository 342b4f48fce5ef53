package company

import "errors"

var (
	// ErrCompanyNotFound は会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("company not found")
	// ErrCompanyAlreadyOwned は雇用者が既に会社を所有している場合に返却されます。
	ErrCompanyAlreadyOwned = errors.New("employer already owns a company")
	// ErrInvalidName は会社名が不正な場合に返却されます。
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidLocation は所在地が不正な場合に返却されます。
	ErrInvalidLocation = errors.New("invalid location")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
)
