package user

import (
	"strings"
	"time"
)

// Role はユーザーの役割を表します。作成後に変更されることはありません。
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleEmployer  Role = "EMPLOYER"
	RoleJobSeeker Role = "JOB_SEEKER"
)

// ParseRole は大文字小文字を区別せずに Role を解釈します。
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleAdmin, RoleEmployer, RoleJobSeeker:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// User はユーザーエンティティです。CompanyID は所有する会社があれば設定されます。
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CompanyID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCompany は会社を所有しているかを返します。
func (u *User) HasCompany() bool {
	return u != nil && u.CompanyID != ""
}
