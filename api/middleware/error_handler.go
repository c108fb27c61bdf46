// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/astro-datacenter/rundb/internal/auth"
	"github.com/astro-datacenter/rundb/internal/catalog"
	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/astro-datacenter/rundb/internal/dataset"
	"github.com/astro-datacenter/rundb/internal/plots"
	"github.com/astro-datacenter/rundb/internal/query"
	"github.com/astro-datacenter/rundb/internal/render"
	"github.com/astro-datacenter/rundb/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers attach errors with c.Error and return; the last one decides the response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last()
		err := last.Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		var (
			statusCode  int
			body        = gin.H{}
			userMessage string
			queryErr    *storage.QueryError
		)

		switch {
		case errors.Is(err, storage.ErrUserNotFound),
			errors.Is(err, storage.ErrDataSetNotFound),
			errors.Is(err, storage.ErrCommentNotFound),
			errors.Is(err, catalog.ErrUnknownPage),
			errors.Is(err, plots.ErrNoTabs),
			errors.Is(err, plots.ErrNoPlot):
			statusCode = http.StatusNotFound
			userMessage = err.Error()
		case errors.Is(err, storage.ErrUserExists),
			errors.Is(err, storage.ErrNoMarsVersion):
			statusCode = http.StatusConflict
			userMessage = err.Error()
		case errors.Is(err, storage.ErrNotOwner),
			errors.Is(err, auth.ErrForbidden):
			statusCode = http.StatusForbidden
			userMessage = err.Error()
		case errors.Is(err, auth.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			userMessage = "Authentication token has expired."
		case errors.Is(err, auth.ErrTokenMalformed),
			errors.Is(err, auth.ErrTokenInvalid),
			errors.Is(err, auth.ErrTokenClaimsInvalid),
			errors.Is(err, auth.ErrUnexpectedSigningMethod):
			statusCode = http.StatusUnauthorized
			userMessage = "Invalid or malformed authentication token."
		case errors.Is(err, auth.ErrUnauthorized):
			statusCode = http.StatusUnauthorized
			userMessage = "Invalid user name or password."
		case isValidationError(err):
			statusCode = http.StatusBadRequest
			userMessage = "Validation failed. Please check your input."
		case last.IsType(gin.ErrorTypeBind),
			errors.Is(err, query.ErrMalformedRequest),
			errors.Is(err, core.ErrInvalidInput),
			errors.Is(err, dataset.ErrInvalidSequences),
			errors.Is(err, storage.ErrNoSequences),
			errors.Is(err, storage.ErrUnknownCommentKey),
			errors.Is(err, plots.ErrUnknownKind),
			errors.Is(err, render.ErrUnknownFormat):
			statusCode = http.StatusBadRequest
			userMessage = err.Error()
		case errors.As(err, &queryErr):
			// database diagnostics are reported as they come
			statusCode = http.StatusInternalServerError
			userMessage = "Query failed."
			body["code"] = queryErr.Code
			body["message"] = queryErr.Message
		default:
			statusCode = http.StatusInternalServerError
			userMessage = "An unexpected internal server error occurred."
			customLog.Warnf("Unhandled error type: %T, Error: %v", err, err)
		}
		body["error"] = userMessage

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, body)
		} else {
			customLog.Warnf("[ErrorHandler] Warning: Response already written before handling error.")
		}
	}
}

func isValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return false
	}
	for _, fe := range validationErrs {
		customLog.Printf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
	}
	return true
}
