package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/middleware"
	"github.com/talentvec/talentvec/internal/pkg/errcode"
	appErr "github.com/talentvec/talentvec/internal/pkg/errors"
	"github.com/talentvec/talentvec/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

// handleError maps the service error taxonomy to API codes. "No matches"
// is never an error; only a search that could not run ends up here.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	var pe *ai.ProviderError
	switch {
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case errors.Is(err, appErr.ErrTimeout):
		response.Error(c, errcode.ErrTimeout, "upstream call timed out")
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, errcode.ErrAIUnavailable, "ai provider not configured")
	case errors.As(err, &pe):
		response.Error(c, errcode.ErrProviderFailed, pe.Error())
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
