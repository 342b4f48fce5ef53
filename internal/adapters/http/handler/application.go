package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/application"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
)

// ApplicationHandler は応募 API の HTTP 実装です。
type ApplicationHandler struct {
	svc       application.UseCase
	validator *Validator
}

// NewApplicationHandler は ApplicationHandler を生成します。
func NewApplicationHandler(svc application.UseCase, v *Validator) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, validator: v}
}

// Apply は求人へ応募します。
func (h *ApplicationHandler) Apply(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req applyRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		writeError(c, err)
		return
	}

	created, err := h.svc.Apply(c.Request.Context(), actor, application.ApplyInput{
		JobID:     req.JobID,
		ResumeURL: req.ResumeURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toApplicationResponse(created))
}

// ListAll は全応募を返します。
func (h *ApplicationHandler) ListAll(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	apps, err := h.svc.ListAll(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(apps, toApplicationResponse))
}

// SearchForJob は求人に対する応募を検索します。本文は省略できます。
func (h *ApplicationHandler) SearchForJob(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req applicationSearchRequest
	if err := bindJSON(c, &req, true); err != nil {
		writeError(c, err)
		return
	}

	page, err := h.svc.SearchForJob(c.Request.Context(), actor, application.SearchForJobInput{
		JobID: c.Param("jobId"),
		Page: search.PageRequest{
			Page:          req.Page,
			Size:          req.Size,
			SortField:     req.SortBy,
			SortDirection: req.SortDir,
		},
		Status: req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPagedResponse(*page, toApplicationResponse))
}

// ListMine は操作主体自身の応募を返します。
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	apps, err := h.svc.ListForApplicant(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(apps, toApplicationResponse))
}
