// Package handlers contains the gin HTTP handlers of the API server.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tendergate/tendergate/pkg/errors"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error onto its HTTP status.  Unknown
// errors become 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := "internal server error"
	if errors.IsClientError(code) {
		message = err.Error()
	}

	c.AbortWithStatusJSON(status, errorResponse{
		Code:    string(code),
		Message: message,
	})
}

// respondBadRequest reports a malformed request body or parameter.
func respondBadRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Code:    string(errors.ErrCodeBadRequest),
		Message: detail,
	})
}
