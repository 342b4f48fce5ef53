package company

import "time"

// Company は会社エンティティです。OwnerID の雇用者がちょうど一人所有します。
type Company struct {
	ID          string
	Name        string
	Description *string
	Location    string
	OwnerID     string
	OwnerName   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
