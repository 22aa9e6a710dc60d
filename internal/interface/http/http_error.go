package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/nutrient-tracker/pkg/errors"
)

// HTTPError is one error envelope: the status plus {"error":{"code","message"}}.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError builds an envelope for failures the handler classifies itself.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

type envelope struct {
	status int
	code   string
}

// appErrorEnvelopes maps domain error codes onto wire statuses and codes.
var appErrorEnvelopes = map[string]envelope{
	apperrors.CodeInvalidInput: {http.StatusBadRequest, "invalid_request"},
	apperrors.CodeNotFound:     {http.StatusNotFound, "not_found"},
	apperrors.CodeLLM:          {http.StatusBadGateway, apperrors.CodeLLM},
	apperrors.CodeStore:        {http.StatusBadGateway, apperrors.CodeStore},
	apperrors.CodeTable:        {http.StatusInternalServerError, apperrors.CodeTable},
}

// asHTTPError classifies err. Client errors echo the full message; upstream
// and internal failures only expose the domain message.
func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if env, ok := appErrorEnvelopes[appErr.Code]; ok {
			message := appErr.Message
			if env.status < http.StatusInternalServerError {
				message = appErr.Error()
			}
			return &HTTPError{Status: env.status, Code: env.code, Message: message, Err: err}
		}
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

// abortWithError records err for errorHandlingMiddleware and stops the chain.
// err may be an *HTTPError or any domain error.
func abortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
