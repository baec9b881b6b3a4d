package apperr

import "github.com/gin-gonic/gin"

type envelope struct {
	Error body `json:"error"`
}

type body struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Render writes err as the JSON error envelope and aborts the request.
func Render(c *gin.Context, err error) {
	appErr := From(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus(), envelope{
		Error: body{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}
