package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/apierror"
	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/middleware"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/authz"
)

// bindJSON は本文を obj へ読み込みます。optional が true の場合、空の本文を許容します。
func bindJSON(c *gin.Context, obj interface{}, optional bool) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// bindAndValidate は本文を読み込み、validate タグで検証します。
func bindAndValidate(c *gin.Context, v *Validator, obj interface{}) error {
	if err := bindJSON(c, obj, false); err != nil {
		return err
	}
	return v.Validate(obj)
}

func requireActor(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		apierror.Abort(c, http.StatusUnauthorized, "Authentication failed", "user not authenticated")
		return authz.Actor{}, false
	}
	return actor, true
}
