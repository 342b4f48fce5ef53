package job

import (
	"strings"
	"time"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/authz"
)

// Status は求人の状態です。業務ルールが参照するのは OPEN のみです。
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
	StatusDraft  Status = "DRAFT"
)

// ParseStatus は大文字小文字を区別せずに Status を解釈します。
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusOpen, StatusClosed, StatusDraft:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Job は求人エンティティです。
type Job struct {
	ID               string
	Title            string
	Description      string
	Location         string
	Salary           float64
	Status           Status
	CompanyID        string
	CompanyName      string
	PostedByID       string
	PostedByName     string
	PosterCompanyID  string
	PostedAt         time.Time
	ApplicationCount int
}

// Resource は認可判定に用いる属性を返します。
func (j *Job) Resource() authz.Resource {
	return authz.Resource{
		JobPostedBy:      j.PostedByID,
		JobCompanyID:     j.CompanyID,
		PosterCompanyID:  j.PosterCompanyID,
		ApplicationCount: j.ApplicationCount,
	}
}
