package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/apierror"
	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/middleware"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/application"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/authz"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	adminActor    = authz.Actor{ID: "00000000-0000-0000-0000-000000000001", Name: "Admin", Role: user.RoleAdmin}
	employerActor = authz.Actor{ID: "00000000-0000-0000-0000-000000000002", Name: "Alice", Role: user.RoleEmployer, CompanyID: "10000000-0000-0000-0000-000000000001"}
	seekerActor   = authz.Actor{ID: "00000000-0000-0000-0000-000000000004", Name: "Sam", Role: user.RoleJobSeeker}
)

type stubJobUseCase struct {
	searchActor authz.Actor
	searchIn    job.SearchInput
	searchOut   *job.SearchResult
	searchErr   error

	createIn  job.CreateJobInput
	createOut *job.Job
	createErr error

	deleteIn  job.DeleteJobInput
	deleteErr error

	statusIn  job.UpdateStatusInput
	statusOut *job.Job
	statusErr error

	listOut []*job.Job
	listErr error
}

func (s *stubJobUseCase) Search(_ context.Context, actor authz.Actor, in job.SearchInput) (*job.SearchResult, error) {
	s.searchActor = actor
	s.searchIn = in
	return s.searchOut, s.searchErr
}

func (s *stubJobUseCase) Create(_ context.Context, _ authz.Actor, in job.CreateJobInput) (*job.Job, error) {
	s.createIn = in
	return s.createOut, s.createErr
}

func (s *stubJobUseCase) Delete(_ context.Context, _ authz.Actor, in job.DeleteJobInput) error {
	s.deleteIn = in
	return s.deleteErr
}

func (s *stubJobUseCase) UpdateStatus(_ context.Context, _ authz.Actor, in job.UpdateStatusInput) (*job.Job, error) {
	s.statusIn = in
	return s.statusOut, s.statusErr
}

func (s *stubJobUseCase) ListAll(context.Context, authz.Actor) ([]*job.Job, error) {
	return s.listOut, s.listErr
}

type stubApplicationUseCase struct {
	applyIn  application.ApplyInput
	applyOut *application.Application
	applyErr error

	searchIn  application.SearchForJobInput
	searchOut *search.Page[*application.Application]
	searchErr error

	listOut []*application.Application
	listErr error

	mineActor authz.Actor
	mineOut   []*application.Application
	mineErr   error
}

func (s *stubApplicationUseCase) Apply(_ context.Context, _ authz.Actor, in application.ApplyInput) (*application.Application, error) {
	s.applyIn = in
	return s.applyOut, s.applyErr
}

func (s *stubApplicationUseCase) SearchForJob(_ context.Context, _ authz.Actor, in application.SearchForJobInput) (*search.Page[*application.Application], error) {
	s.searchIn = in
	return s.searchOut, s.searchErr
}

func (s *stubApplicationUseCase) ListAll(context.Context, authz.Actor) ([]*application.Application, error) {
	return s.listOut, s.listErr
}

func (s *stubApplicationUseCase) ListForApplicant(_ context.Context, actor authz.Actor) ([]*application.Application, error) {
	s.mineActor = actor
	return s.mineOut, s.mineErr
}

type stubCompanyUseCase struct {
	createIn  company.CreateCompanyInput
	createOut *company.Company
	createErr error

	getIn  company.GetCompanyInput
	getOut *company.Company
	getErr error

	listIn  company.ListCompaniesInput
	listOut *search.Page[*company.Company]
	listErr error
}

func (s *stubCompanyUseCase) CreateCompany(_ context.Context, _ authz.Actor, in company.CreateCompanyInput) (*company.Company, error) {
	s.createIn = in
	return s.createOut, s.createErr
}

func (s *stubCompanyUseCase) GetCompany(_ context.Context, in company.GetCompanyInput) (*company.Company, error) {
	s.getIn = in
	return s.getOut, s.getErr
}

func (s *stubCompanyUseCase) ListCompanies(_ context.Context, in company.ListCompaniesInput) (*search.Page[*company.Company], error) {
	s.listIn = in
	return s.listOut, s.listErr
}

type stubUserRegistrar struct {
	createIn  user.CreateUserInput
	createOut *user.User
	createErr error
}

func (s *stubUserRegistrar) CreateUser(_ context.Context, in user.CreateUserInput) (*user.User, error) {
	s.createIn = in
	return s.createOut, s.createErr
}

type testStubs struct {
	jobs      *stubJobUseCase
	apps      *stubApplicationUseCase
	companies *stubCompanyUseCase
	users     *stubUserRegistrar
	health    HealthCheck
}

var testToken = TokenConfig{Secret: "test-secret", Issuer: "jobboard", TTL: time.Hour}

func newTestRouter(actor *authz.Actor, stubs testStubs) *gin.Engine {
	if stubs.jobs == nil {
		stubs.jobs = &stubJobUseCase{}
	}
	if stubs.apps == nil {
		stubs.apps = &stubApplicationUseCase{}
	}
	if stubs.companies == nil {
		stubs.companies = &stubCompanyUseCase{}
	}
	if stubs.users == nil {
		stubs.users = &stubUserRegistrar{}
	}

	v := NewValidator()
	auth := func(c *gin.Context) {
		if actor != nil {
			middleware.SetActor(c, *actor)
		}
		c.Next()
	}

	return NewRouter(RouterDeps{
		Jobs:         NewJobHandler(stubs.jobs, v),
		Applications: NewApplicationHandler(stubs.apps, v),
		Companies:    NewCompanyHandler(stubs.companies, v),
		Health:       NewHealthHandler(stubs.health),
		Accounts:     NewAccountHandler(stubs.users, v, testToken),
		Auth:         auth,
	})
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apierror.Body {
	t.Helper()
	var body apierror.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil, testStubs{})
	if rec := doRequest(r, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	down := newTestRouter(nil, testStubs{health: func(context.Context) error { return errors.New("db down") }})
	rec := doRequest(down, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouter_RequiresActor(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil, testStubs{})
	rec := doRequest(r, http.MethodPost, "/api/jobs/search", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_RoleGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		actor  authz.Actor
		method string
		path   string
		body   string
		want   int
	}{
		{"seeker cannot list all jobs", seekerActor, http.MethodGet, "/api/jobs", "", http.StatusForbidden},
		{"admin lists all jobs", adminActor, http.MethodGet, "/api/jobs", "", http.StatusOK},
		{"seeker cannot create job", seekerActor, http.MethodPost, "/api/jobs", `{}`, http.StatusForbidden},
		{"employer cannot apply", employerActor, http.MethodPost, "/api/applications/apply", `{}`, http.StatusForbidden},
		{"employer cannot list all applications", employerActor, http.MethodGet, "/api/applications", "", http.StatusForbidden},
		{"seeker cannot search job applications", seekerActor, http.MethodPost, "/api/applications/job/x/search", "", http.StatusForbidden},
		{"admin cannot create company", adminActor, http.MethodPost, "/api/companies", `{}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			actor := tt.actor
			r := newTestRouter(&actor, testStubs{})
			rec := doRequest(r, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}
