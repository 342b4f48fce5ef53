package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/apierror"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/application"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/authz"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	pg "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

var errMalformedBody = errors.New("malformed request body")

func toHTTPError(err error) (int, string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "Validation error"
	case errors.Is(err, errMalformedBody),
		errors.Is(err, search.ErrInvalidPage),
		errors.Is(err, search.ErrInvalidPageSize),
		errors.Is(err, search.ErrInvalidSortField),
		errors.Is(err, job.ErrInvalidID),
		errors.Is(err, job.ErrInvalidTitle),
		errors.Is(err, job.ErrInvalidDescription),
		errors.Is(err, job.ErrInvalidLocation),
		errors.Is(err, job.ErrInvalidSalary),
		errors.Is(err, job.ErrInvalidStatus),
		errors.Is(err, application.ErrInvalidJobID),
		errors.Is(err, application.ErrInvalidResumeURL),
		errors.Is(err, application.ErrInvalidStatus),
		errors.Is(err, company.ErrInvalidID),
		errors.Is(err, company.ErrInvalidName),
		errors.Is(err, company.ErrInvalidLocation),
		errors.Is(err, user.ErrInvalidID),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidName),
		errors.Is(err, user.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, job.ErrJobNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, authz.ErrDenied):
		return http.StatusForbidden, "Unauthorized operation"
	case errors.Is(err, application.ErrDuplicateApplication),
		errors.Is(err, user.ErrEmailAlreadyExists):
		return http.StatusConflict, "Duplicate entry"
	case errors.Is(err, job.ErrCompanyRequired),
		errors.Is(err, company.ErrCompanyAlreadyOwned):
		return http.StatusConflict, "Illegal state"
	case errors.Is(err, pg.ErrTxConflict):
		return http.StatusConflict, "Concurrent modification"
	default:
		return http.StatusInternalServerError, "Unexpected error occurred"
	}
}

// writeError はエラーを HTTP ステータスへ変換して応答します。内部エラーの詳細は返しません。
func writeError(c *gin.Context, err error) {
	status, message := toHTTPError(err)
	log := logger.FromContext(c.Request.Context())

	details := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("unhandled error", "path", c.Request.URL.Path, "error", err)
		details = ""
	} else {
		log.Warn(message, "path", c.Request.URL.Path, "error", err)
	}

	apierror.Abort(c, status, message, details)
}
