package application

import (
	"strings"
	"time"
)

// Status は応募の状態です。このサービスが生成するのは APPLIED のみです。
type Status string

const (
	StatusApplied     Status = "APPLIED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusShortlisted Status = "SHORTLISTED"
	StatusRejected    Status = "REJECTED"
	StatusHired       Status = "HIRED"
)

// ParseStatus は大文字小文字を区別せずに Status を解釈します。
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusApplied, StatusUnderReview, StatusShortlisted, StatusRejected, StatusHired:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Application は応募エンティティです。(JobID, ApplicantID) の組は一意です。
type Application struct {
	ID            string
	JobID         string
	JobTitle      string
	ApplicantID   string
	ApplicantName string
	ResumeURL     string
	Status        Status
	AppliedAt     time.Time
}
