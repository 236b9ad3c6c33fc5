package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	// Message replaces the error text when set. Storage and internal errors
	// are not echoed to clients.
	Message string
}

var errorMappings = map[string]ErrorMapping{
	domainErrors.KindValidation: {HTTPStatus: http.StatusBadRequest},
	domainErrors.KindNotFound:   {HTTPStatus: http.StatusNotFound},
	domainErrors.KindConflict:   {HTTPStatus: http.StatusConflict},
	domainErrors.KindTransient: {
		HTTPStatus: http.StatusServiceUnavailable,
		Message:    "Storage temporarily unavailable, please retry",
	},
	domainErrors.KindInternal: {
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Internal server error",
	},
}

func MapDomainError(err error) (int, *ErrorResponse) {
	kind := domainErrors.KindOf(err)
	mapping, ok := errorMappings[kind]
	if !ok {
		kind = domainErrors.KindInternal
		mapping = errorMappings[kind]
	}

	message := mapping.Message
	if message == "" {
		message = err.Error()
	}

	resp := Error(kind, message)

	var verr *domainErrors.ValidationError
	if errors.As(err, &verr) {
		resp.Message = "Validation failed"
		resp.Errors = verr.Fields
	}
	return mapping.HTTPStatus, resp
}

func WriteDomainError(w http.ResponseWriter, err error) {
	statusCode, errorResponse := MapDomainError(err)
	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, statusCode, errorResponse)
}
