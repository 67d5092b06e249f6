package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/subtitler/errors"
)

// Envelope wraps every successful JSON API body.
type Envelope struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

type Meta struct {
	Total int `json:"total"`
	Limit int `json:"limit,omitempty"`
}

func respond(c *gin.Context, status int, data any, meta *Meta) {
	c.JSON(status, Envelope{Data: data, Meta: meta})
}

func RespondOK(c *gin.Context, data any)                     { respond(c, http.StatusOK, data, nil) }
func RespondCreated(c *gin.Context, data any)                { respond(c, http.StatusCreated, data, nil) }
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) { respond(c, http.StatusOK, data, meta) }

// RespondWithError renders err as an error body and stops the handler
// chain. Anything that is not an AppError is reported as INTERNAL_ERROR.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
