// Package handlers is the Gin HTTP surface over the engine's core
// components, grounded on the teacher's internal/handlers/projections.go
// handler shape (gin.H error bodies, query-param binding) and
// internal/draft/requests.go's binding-tag request structs.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fantasyprojections/engine/internal/apperr"
)

// statusFor maps an apperr.Kind to the HTTP status it reports as.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindPrecondition:
		return http.StatusUnprocessableEntity
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the uniform {error} envelope for any error from the core,
// mapping its apperr.Kind to a status code.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(apperr.KindOf(err)), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, format string, args ...interface{}) {
	fail(c, apperr.InvalidInput(format, args...))
}
