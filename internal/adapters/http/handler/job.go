package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
)

// JobHandler は求人 API の HTTP 実装です。
type JobHandler struct {
	svc       job.UseCase
	validator *Validator
}

// NewJobHandler は JobHandler を生成します。
func NewJobHandler(svc job.UseCase, v *Validator) *JobHandler {
	return &JobHandler{svc: svc, validator: v}
}

// ListAll は全求人を返します。
func (h *JobHandler) ListAll(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	jobs, err := h.svc.ListAll(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(jobs, toJobResponse))
}

// Search は条件・ページング・ソートを指定して求人を検索します。本文は省略できます。
func (h *JobHandler) Search(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req jobSearchRequest
	if err := bindJSON(c, &req, true); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.Search(c.Request.Context(), actor, req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJobSearchResponse(result))
}

// Create は求人を作成します。
func (h *JobHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req createJobRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		writeError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), actor, job.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Salary:      *req.Salary,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toJobResponse(created))
}

// Delete は求人を削除します。
func (h *JobHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, job.DeleteJobInput{ID: c.Param("id")}); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus はクエリパラメーター status で求人のステータスを変更します。
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), actor, job.UpdateStatusInput{
		ID:     c.Param("id"),
		Status: c.Query("status"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJobResponse(updated))
}
