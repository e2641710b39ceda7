package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes err with the status and code it maps to.
func RespondAPIError(c *gin.Context, err error) {
	ae := FromError(err)
	RespondError(c, ae.Status, ae.Code, ae)
}

// RespondErrorWith is RespondAPIError with one extra top-level field, used
// when a failed call still produced partial data.
func RespondErrorWith(c *gin.Context, err error, key string, data any) {
	ae := FromError(err)
	c.JSON(ae.Status, gin.H{
		"error": APIError{Message: ae.Error(), Code: ae.Code},
		key:     data,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Abort writes the envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	ae := FromError(err)
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{Error: APIError{Message: ae.Error(), Code: ae.Code}})
}
