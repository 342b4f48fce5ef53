package authz

import (
	"errors"
	"fmt"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
)

// ErrDenied は認可ポリシーにより操作が拒否されたことを表します。
var ErrDenied = errors.New("authz: operation denied")

// Operation は認可対象の操作です。
type Operation string

const (
	ListAllJobs           Operation = "list_all_jobs"
	ListAllApplications   Operation = "list_all_applications"
	SearchJobs            Operation = "search_jobs"
	SearchJobApplications Operation = "search_job_applications"
	CreateJob             Operation = "create_job"
	DeleteJob             Operation = "delete_job"
	UpdateJobStatus       Operation = "update_job_status"
	Apply                 Operation = "apply"
	ListOwnApplications   Operation = "list_own_applications"
	CreateCompany         Operation = "create_company"
)

// Violation は拒否理由の種別です。
type Violation string

const (
	ViolationNone       Violation = ""
	ViolationRole       Violation = "role"
	ViolationOwnership  Violation = "ownership"
	ViolationCompany    Violation = "company"
	ViolationDependents Violation = "dependents"
	ViolationDuplicate  Violation = "duplicate"
	ViolationNoCompany  Violation = "no_company"
	ViolationHasCompany Violation = "has_company"
)

// Actor は操作を行う認証済みの主体です。
type Actor struct {
	ID        string
	Name      string
	Role      user.Role
	CompanyID string
}

// HasCompany は Actor が会社に所属しているかを返します。
func (a Actor) HasCompany() bool {
	return a.CompanyID != ""
}

// Resource は判定に必要な対象リソースの属性です。操作に関係しない項目はゼロ値で構いません。
type Resource struct {
	JobPostedBy      string
	JobCompanyID     string
	PosterCompanyID  string
	ApplicationCount int
	AlreadyApplied   bool
}

// Decision は認可判定の結果です。
type Decision struct {
	Allowed   bool
	Violation Violation
	Reason    string
}

// Err は拒否された場合に *DeniedError を返します。許可されていれば nil です。
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Violation: d.Violation, Reason: d.Reason}
}

// DeniedError は拒否理由を保持するエラーです。errors.Is(err, ErrDenied) が成立します。
type DeniedError struct {
	Violation Violation
	Reason    string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("authz: %s", e.Reason)
}

// Is は ErrDenied との比較を可能にします。
func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

type rule func(Actor, Resource) Decision

var policy = map[Operation]map[user.Role]rule{
	ListAllJobs:         {user.RoleAdmin: allow},
	ListAllApplications: {user.RoleAdmin: allow},
	SearchJobs: {
		user.RoleAdmin:     allow,
		user.RoleEmployer:  allow,
		user.RoleJobSeeker: allow,
	},
	SearchJobApplications: {
		user.RoleAdmin:    allow,
		user.RoleEmployer: ownsJob,
	},
	CreateJob: {user.RoleEmployer: hasCompany},
	DeleteJob: {
		user.RoleAdmin:    allow,
		user.RoleEmployer: ownsJobWithoutApplications,
	},
	UpdateJobStatus: {
		user.RoleAdmin:    allow,
		user.RoleEmployer: ownsJob,
	},
	Apply:               {user.RoleJobSeeker: notYetApplied},
	ListOwnApplications: {user.RoleJobSeeker: allow},
	CreateCompany:       {user.RoleEmployer: withoutCompany},
}

// AuthorizeRole はロールのみで判定できる事前検査を行います。
// リソースを取得する前に呼び出すことで、不要な読み込みを避けられます。
func AuthorizeRole(actor Actor, op Operation) Decision {
	if _, ok := policy[op][actor.Role]; !ok {
		return deny(ViolationRole, fmt.Sprintf("role %s may not perform %s", roleName(actor.Role), op))
	}
	return allow(actor, Resource{})
}

// Authorize は actor が res に対して op を実行できるかを判定します。
func Authorize(actor Actor, op Operation, res Resource) Decision {
	r, ok := policy[op][actor.Role]
	if !ok {
		return deny(ViolationRole, fmt.Sprintf("role %s may not perform %s", roleName(actor.Role), op))
	}
	return r(actor, res)
}

func allow(Actor, Resource) Decision {
	return Decision{Allowed: true}
}

func deny(v Violation, reason string) Decision {
	return Decision{Violation: v, Reason: reason}
}

func ownsJob(actor Actor, res Resource) Decision {
	if res.JobPostedBy != actor.ID {
		return deny(ViolationOwnership, "job was posted by another user")
	}
	if !actor.HasCompany() || actor.CompanyID != res.JobCompanyID {
		return deny(ViolationCompany, "job belongs to a different company")
	}
	if res.PosterCompanyID != res.JobCompanyID {
		return deny(ViolationCompany, "job poster does not belong to the job's company")
	}
	return allow(actor, res)
}

func ownsJobWithoutApplications(actor Actor, res Resource) Decision {
	if d := ownsJob(actor, res); !d.Allowed {
		return d
	}
	if res.ApplicationCount > 0 {
		return deny(ViolationDependents, fmt.Sprintf("job has %d application(s)", res.ApplicationCount))
	}
	return allow(actor, res)
}

func hasCompany(actor Actor, res Resource) Decision {
	if !actor.HasCompany() {
		return deny(ViolationNoCompany, "employer has no associated company")
	}
	return allow(actor, res)
}

func withoutCompany(actor Actor, res Resource) Decision {
	if actor.HasCompany() {
		return deny(ViolationHasCompany, "employer already owns a company")
	}
	return allow(actor, res)
}

func notYetApplied(actor Actor, res Resource) Decision {
	if res.AlreadyApplied {
		return deny(ViolationDuplicate, "already applied to this job")
	}
	return allow(actor, res)
}

func roleName(r user.Role) string {
	if r == "" {
		return "<none>"
	}
	return string(r)
}
