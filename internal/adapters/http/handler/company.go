package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

// CompanyHandler は会社 API の HTTP 実装です。
type CompanyHandler struct {
	svc       company.UseCase
	validator *Validator
}

// NewCompanyHandler は CompanyHandler を生成します。
func NewCompanyHandler(svc company.UseCase, v *Validator) *CompanyHandler {
	return &CompanyHandler{svc: svc, validator: v}
}

// Create は操作主体が所有する会社を作成します。
func (h *CompanyHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req createCompanyRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		writeError(c, err)
		return
	}

	created, err := h.svc.CreateCompany(c.Request.Context(), actor, company.CreateCompanyInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCompanyResponse(created))
}

// Get は会社を取得します。
func (h *CompanyHandler) Get(c *gin.Context) {
	found, err := h.svc.GetCompany(c.Request.Context(), company.GetCompanyInput{ID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCompanyResponse(found))
}

// List は会社の一覧を返します。page, size, sortBy, sortDir をクエリで指定できます。
func (h *CompanyHandler) List(c *gin.Context) {
	req, err := pageRequestFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := h.svc.ListCompanies(c.Request.Context(), company.ListCompaniesInput{Page: req})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPagedResponse(*page, toCompanyResponse))
}

func pageRequestFromQuery(c *gin.Context) (search.PageRequest, error) {
	var req search.PageRequest

	intParam := func(key string, invalid error) (*int, error) {
		raw, ok := c.GetQuery(key)
		if !ok || raw == "" {
			return nil, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalid
		}
		return &v, nil
	}

	var err error
	if req.Page, err = intParam("page", search.ErrInvalidPage); err != nil {
		return req, err
	}
	if req.Size, err = intParam("size", search.ErrInvalidPageSize); err != nil {
		return req, err
	}
	if v, ok := c.GetQuery("sortBy"); ok {
		req.SortField = &v
	}
	if v, ok := c.GetQuery("sortDir"); ok {
		req.SortDirection = &v
	}
	return req, nil
}
