package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

// ErrorBody is the contract for every non-2xx response. The top-level
// success/message pair is what browser clients read; error carries the
// machine-readable kind.
type ErrorBody struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Error   *appErrors.Error `json:"error"`
}

// SuccessBody acknowledges writes that carry no payload.
type SuccessBody struct {
	Success bool `json:"success"`
}

// JSON sends a payload as-is.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// OK acknowledges a successful write with {"success":true}.
func OK(c *gin.Context) {
	JSON(c, http.StatusOK, SuccessBody{Success: true})
}

// Error sends an error response converting the error to the common structure.
// Wrapped causes are never serialised.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, ErrorBody{Success: false, Message: appErr.Message, Error: appErr})
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Attachment streams a generated file download.
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
