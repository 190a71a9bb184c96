package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribekit/errors"
)

// RespondWithError writes err as an error body. Errors that are not
// AppErrors go out as a generic 500 without their text.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Normalize(err)
	c.JSON(appErr.Status(), appErr.ToResponse())
}

// RespondOK writes data as a 200 JSON body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
