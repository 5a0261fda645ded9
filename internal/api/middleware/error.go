package middleware

import (
	"errors"
	"net/http"

	"dma-backtest/internal/api/models"
	"dma-backtest/internal/model"

	"github.com/gin-gonic/gin"
)

// ErrorHandler translates errors attached to the context into the API's
// {"error":{code,message}} envelope. The engine's typed errors map to
// 422 so clients can tell bad input data from a malformed request.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, code := classify(err)
		c.JSON(status, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    code,
				Message: err.Error(),
			},
		})
	}
}

func classify(err error) (int, string) {
	var insufficient *model.InsufficientDataError
	var invalidPrice *model.InvalidPriceError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"
	case errors.As(err, &invalidPrice):
		return http.StatusUnprocessableEntity, "INVALID_PRICE"
	default:
		return http.StatusBadRequest, "BACKTEST_ERROR"
	}
}

// Recovery converts panics into an INTERNAL_ERROR envelope instead of
// dropping the connection.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: msg,
			},
		})
		c.Abort()
	})
}
