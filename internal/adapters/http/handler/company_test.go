package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

func sampleCompany() *company.Company {
	desc := "Widgets"
	return &company.Company{
		ID:          employerActor.CompanyID,
		Name:        "Acme",
		Description: &desc,
		Location:    "Berlin",
		OwnerID:     employerActor.ID,
		OwnerName:   "Alice",
		CreatedAt:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCompanyHandler_Create(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	stub := &stubCompanyUseCase{createOut: sampleCompany()}
	actor := employerActor
	actor.CompanyID = ""
	r := newTestRouter(&actor, testStubs{companies: stub})

	rec := doRequest(r, http.MethodPost, "/api/companies", `{"name":"Acme","description":"Widgets","location":"Berlin"}`)
	c.Assert(rec.Code, qt.Equals, http.StatusCreated, qt.Commentf("body: %s", rec.Body.String()))
	c.Assert(stub.createIn.Name, qt.Equals, "Acme")
	c.Assert(*stub.createIn.Description, qt.Equals, "Widgets")

	var got companyResponse
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &got), qt.IsNil)
	c.Assert(got.OwnerName, qt.Equals, "Alice")
}

func TestCompanyHandler_Create_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		err     error
		want    int
		message string
	}{
		{"already owned", `{"name":"Acme","location":"Berlin"}`, company.ErrCompanyAlreadyOwned, http.StatusConflict, "Illegal state"},
		{"name missing", `{"location":"Berlin"}`, nil, http.StatusBadRequest, "Validation error"},
		{"malformed", `{"name":`, nil, http.StatusBadRequest, "Invalid input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := qt.New(t)

			actor := employerActor
			r := newTestRouter(&actor, testStubs{companies: &stubCompanyUseCase{createErr: tt.err}})
			rec := doRequest(r, http.MethodPost, "/api/companies", tt.body)
			c.Assert(rec.Code, qt.Equals, tt.want)
			c.Assert(decodeError(t, rec).Message, qt.Equals, tt.message)
		})
	}
}

func TestCompanyHandler_Get(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	stub := &stubCompanyUseCase{getOut: sampleCompany()}
	actor := seekerActor
	r := newTestRouter(&actor, testStubs{companies: stub})

	rec := doRequest(r, http.MethodGet, "/api/companies/"+employerActor.CompanyID, "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(stub.getIn.ID, qt.Equals, employerActor.CompanyID)

	missing := newTestRouter(&actor, testStubs{companies: &stubCompanyUseCase{getErr: company.ErrCompanyNotFound}})
	rec = doRequest(missing, http.MethodGet, "/api/companies/unknown", "")
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	c.Assert(decodeError(t, rec).Message, qt.Equals, "Resource not found")
}

func TestCompanyHandler_List(t *testing.T) {
	t.Parallel()
	c := qt.New(t)

	page := search.NewPage([]*company.Company{sampleCompany()}, search.Query{Page: 1, Size: 1}, 3)
	stub := &stubCompanyUseCase{listOut: &page}
	actor := seekerActor
	r := newTestRouter(&actor, testStubs{companies: stub})

	rec := doRequest(r, http.MethodGet, "/api/companies?page=1&size=1&sortBy=name&sortDir=asc", "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))

	in := stub.listIn.Page
	c.Assert(*in.Page, qt.Equals, 1)
	c.Assert(*in.Size, qt.Equals, 1)
	c.Assert(*in.SortField, qt.Equals, "name")
	c.Assert(*in.SortDirection, qt.Equals, "asc")

	var got pagedResponse[companyResponse]
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &got), qt.IsNil)
	c.Assert(got.CurrentPage, qt.Equals, 1)
	c.Assert(got.TotalPages, qt.Equals, 3)
	c.Assert(got.Content, qt.HasLen, 1)
}

func TestCompanyHandler_List_InvalidQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"page not a number", "?page=first"},
		{"size not a number", "?size=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := qt.New(t)

			stub := &stubCompanyUseCase{}
			actor := adminActor
			r := newTestRouter(&actor, testStubs{companies: stub})

			rec := doRequest(r, http.MethodGet, "/api/companies"+tt.query, "")
			c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
			c.Assert(decodeError(t, rec).Message, qt.Equals, "Invalid input")
		})
	}
}
