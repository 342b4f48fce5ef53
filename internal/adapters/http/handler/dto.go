package handler

import (
	"time"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/application"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
)

type paginationRequest struct {
	Page *int `json:"page"`
	Size *int `json:"size"`
}

type sortRequest struct {
	By        *string `json:"by"`
	Direction *string `json:"direction"`
}

type jobFilterRequest struct {
	Keyword     *string `json:"keyword"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
	CompanyName *string `json:"companyName"`
}

type jobSearchRequest struct {
	Pagination paginationRequest `json:"pagination"`
	Sort       sortRequest       `json:"sort"`
	Filter     *jobFilterRequest `json:"filter"`
}

func (r jobSearchRequest) toInput() job.SearchInput {
	in := job.SearchInput{
		Page: search.PageRequest{
			Page:          r.Pagination.Page,
			Size:          r.Pagination.Size,
			SortField:     r.Sort.By,
			SortDirection: r.Sort.Direction,
		},
	}
	if r.Filter != nil {
		in.Filter = &job.RawFilter{
			Keyword:     r.Filter.Keyword,
			Location:    r.Filter.Location,
			Status:      r.Filter.Status,
			CompanyName: r.Filter.CompanyName,
		}
	}
	return in
}

type createJobRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Salary      *float64 `json:"salary" validate:"required,gt=0"`
	Status      *string  `json:"status"`
}

type applyRequest struct {
	JobID     string `json:"jobId" validate:"required,uuid"`
	ResumeURL string `json:"resumeUrl" validate:"required"`
}

type applicationSearchRequest struct {
	Page    *int    `json:"page"`
	Size    *int    `json:"size"`
	Status  *string `json:"status"`
	SortBy  *string `json:"sortBy"`
	SortDir *string `json:"sortDir"`
}

type createCompanyRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Location    string  `json:"location" validate:"required"`
}

type registerRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Name  string  `json:"name" validate:"required"`
	Role  *string `json:"role"`
}

type authResponse struct {
	Token  string    `json:"token"`
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   user.Role `json:"role"`
}

type jobResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Salary      float64    `json:"salary"`
	Status      job.Status `json:"status"`
	CompanyName string     `json:"companyName"`
	PostedBy    string     `json:"postedBy"`
	PostedDate  time.Time  `json:"postedDate"`
}

func toJobResponse(j *job.Job) jobResponse {
	return jobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		Location:    j.Location,
		Salary:      j.Salary,
		Status:      j.Status,
		CompanyName: j.CompanyName,
		PostedBy:    j.PostedByName,
		PostedDate:  j.PostedAt,
	}
}

type applicationResponse struct {
	ID            string             `json:"id"`
	JobID         string             `json:"jobId"`
	ApplicantID   string             `json:"applicantId"`
	JobTitle      string             `json:"jobTitle"`
	ApplicantName string             `json:"applicantName"`
	ResumeURL     string             `json:"resumeUrl"`
	Status        application.Status `json:"status"`
	AppliedAt     time.Time          `json:"appliedAt"`
}

func toApplicationResponse(a *application.Application) applicationResponse {
	return applicationResponse{
		ID:            a.ID,
		JobID:         a.JobID,
		ApplicantID:   a.ApplicantID,
		JobTitle:      a.JobTitle,
		ApplicantName: a.ApplicantName,
		ResumeURL:     a.ResumeURL,
		Status:        a.Status,
		AppliedAt:     a.AppliedAt,
	}
}

type companyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Location    string    `json:"location"`
	OwnerName   string    `json:"ownerName"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toCompanyResponse(c *company.Company) companyResponse {
	return companyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
		OwnerName:   c.OwnerName,
		CreatedAt:   c.CreatedAt,
	}
}

type pagedResponse[T any] struct {
	Content     []T   `json:"content"`
	CurrentPage int   `json:"currentPage"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

func toPagedResponse[T, U any](p search.Page[T], fn func(T) U) pagedResponse[U] {
	mapped := search.Map(p, fn)
	return pagedResponse[U]{
		Content:     mapped.Items,
		CurrentPage: mapped.Page,
		TotalItems:  mapped.TotalItems,
		TotalPages:  mapped.TotalPages,
	}
}

type appliedFiltersResponse struct {
	Keyword     *string `json:"keyword"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
	CompanyName *string `json:"companyName"`
}

type jobSearchResponse struct {
	Results         pagedResponse[jobResponse] `json:"results"`
	TotalActiveJobs int64                      `json:"totalActiveJobs"`
	AppliedFilters  appliedFiltersResponse     `json:"appliedFilters"`
}

func toJobSearchResponse(r *job.SearchResult) jobSearchResponse {
	return jobSearchResponse{
		Results:         toPagedResponse(r.Page, toJobResponse),
		TotalActiveJobs: r.TotalActiveJobs,
		AppliedFilters: appliedFiltersResponse{
			Keyword:     r.AppliedFilters.Keyword,
			Location:    r.AppliedFilters.Location,
			Status:      r.AppliedFilters.Status,
			CompanyName: r.AppliedFilters.CompanyName,
		},
	}
}

func mapSlice[T, U any](items []T, fn func(T) U) []U {
	out := make([]U, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
