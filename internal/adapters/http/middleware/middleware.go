package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http/dto"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/metrics"
)

func AddRequestIDAndTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Set("RequestID", requestID)
		c.Set("RequestStart", time.Now())
		c.Next()
	}
}

func CheckContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := c.GetHeader("Content-Type")

		parts := strings.Split(contentType, ";")
		if len(parts) == 0 || strings.TrimSpace(strings.ToLower(parts[0])) != "application/json" {
			httpErr := dto.HttpError{Message: "invalid content type, expected application/json", Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
			c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
			return
		}
		c.Next()
	}
}

// CheckContentBody decodes the json body into T, rejects malformed or
// oversized payloads with a useful message and stores the decoded value
// under the "payload" key for the handler.
func CheckContentBody[T any](maxsize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(maxsize))

		var payload T
		decoder := json.NewDecoder(c.Request.Body)
		decoder.DisallowUnknownFields()

		err := decoder.Decode(&payload)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var unmarshalTypeErr *json.UnmarshalTypeError

			switch {
			case errors.Is(err, io.EOF):
				httpErr := dto.HttpError{Message: "body must not be empty", Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
				c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
				return

			case errors.Is(err, io.ErrUnexpectedEOF):
				httpErr := dto.HttpError{Message: "body contains badly-formed json", Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
				c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
				return

			case err.Error() == "http: request body too large":
				httpErr := dto.HttpError{Message: fmt.Sprintf("body must not be larger than %d bytes", maxsize), Code: domain.ErrCodeValidation, StatusCode: http.StatusRequestEntityTooLarge}
				c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
				return

			case errors.As(err, &syntaxErr):
				httpErr := dto.HttpError{Message: fmt.Sprintf("body contains badly-formed json at character %d", syntaxErr.Offset), Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
				c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
				return

			case errors.As(err, &unmarshalTypeErr):
				httpErr := dto.HttpError{Message: fmt.Sprintf("body contains incorrect json type for %q at %d", unmarshalTypeErr.Field, unmarshalTypeErr.Offset), Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
				c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
				return

			case strings.HasPrefix(err.Error(), "json: unknown field"):
				fieldname := strings.TrimPrefix(err.Error(), "json: unknown field")
				httpErr := dto.HttpError{Message: fmt.Sprintf("body contains unknown key %s", fieldname), Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
				c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
				return

			default:
				httpErr := dto.HttpError{Message: fmt.Sprintf("error happened: %s", err.Error()), Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
				c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
				return
			}
		}

		err = decoder.Decode(&struct{}{})
		if err != io.EOF {
			httpErr := dto.HttpError{Message: "body must contain only one json value", Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
			c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
			return
		}

		validate := validator.New()
		err = validate.Struct(payload)
		if err != nil {
			httpErr := dto.HttpError{Message: err.Error(), Code: domain.ErrCodeValidation, StatusCode: http.StatusBadRequest}
			c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
			return
		}

		c.Set("payload", payload)
		c.Next()
	}
}

func PanicRecoveryMiddleware(logger domain.LoggingRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("internal server error",
					"request_id", c.GetString("RequestID"),
					"method", c.Request.Method,
					"path", c.FullPath(),
					"reason", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)

				httpErr := dto.HttpError{Message: "internal server error", Code: domain.ErrCodeInternal, StatusCode: http.StatusInternalServerError}
				c.AbortWithStatusJSON(httpErr.StatusCode, httpErr)
			}
		}()

		c.Next()
	}
}

func LoggingRequestMiddleware(logger domain.LoggingRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Info("http_request_start",
			"request_id", c.GetString("RequestID"),
			"method", c.Request.Method,
			"user-agent", c.Request.UserAgent(),
			"path", c.FullPath())

		c.Next()
	}
}

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
