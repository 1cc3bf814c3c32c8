package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	"github.com/fieldside/rightsdesk/internal/authorization"
	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	pricingdomain "github.com/fieldside/rightsdesk/internal/pricing/domain"
	rightsdomain "github.com/fieldside/rightsdesk/internal/rights/domain"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	suggestiondomain "github.com/fieldside/rightsdesk/internal/suggestion/domain"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponseBody struct {
	Error errorPayload `json:"error"`
}

func errorResponse(payload errorPayload) errorResponseBody {
	return errorResponseBody{Error: payload}
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse(payload))
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, pricingdomain.ErrRateLimited),
		errors.Is(err, pricingdomain.ErrRecomputeInFlight):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: rateLimitedMessage(err),
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, pricingdomain.ErrSignalUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isTerritoryValidationError(err),
		isBroadcasterValidationError(err),
		isEventValidationError(err),
		isRightsPackageValidationError(err),
		isRightsValidationError(err),
		isSuggestionValidationError(err),
		isPriceTierValidationError(err),
		isPricingValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isTerritoryValidationError(err error) bool {
	return errors.Is(err, territorydomain.ErrInvalidTerritoryCode) ||
		errors.Is(err, territorydomain.ErrUnknownTerritory)
}

func isBroadcasterValidationError(err error) bool {
	switch {
	case errors.Is(err, broadcasterdomain.ErrInvalidName),
		errors.Is(err, broadcasterdomain.ErrInvalidID),
		errors.Is(err, broadcasterdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isEventValidationError(err error) bool {
	switch {
	case errors.Is(err, eventdomain.ErrInvalidTitle),
		errors.Is(err, eventdomain.ErrInvalidSport),
		errors.Is(err, eventdomain.ErrInvalidID),
		errors.Is(err, eventdomain.ErrInvalidStartAt):
		return true
	default:
		return false
	}
}

func isRightsPackageValidationError(err error) bool {
	switch {
	case errors.Is(err, packagedomain.ErrInvalidName),
		errors.Is(err, packagedomain.ErrInvalidID),
		errors.Is(err, packagedomain.ErrInvalidBroadcaster),
		errors.Is(err, packagedomain.ErrInvalidScopeType),
		errors.Is(err, packagedomain.ErrMissingScopeField),
		errors.Is(err, packagedomain.ErrInvalidWindow):
		return true
	default:
		return false
	}
}

func isRightsValidationError(err error) bool {
	switch {
	case errors.Is(err, rightsdomain.ErrInvalidID),
		errors.Is(err, rightsdomain.ErrInvalidEvent),
		errors.Is(err, rightsdomain.ErrInvalidBroadcaster),
		errors.Is(err, rightsdomain.ErrInvalidExclusivity),
		errors.Is(err, rightsdomain.ErrInvalidPlatform),
		errors.Is(err, rightsdomain.ErrInvalidReplayWindow),
		errors.Is(err, rightsdomain.ErrPackageMismatch):
		return true
	default:
		return false
	}
}

func isSuggestionValidationError(err error) bool {
	return errors.Is(err, suggestiondomain.ErrMissingScope)
}

func isPriceTierValidationError(err error) bool {
	return errors.Is(err, pricetierdomain.ErrInvalidTier) ||
		errors.Is(err, pricetierdomain.ErrInvalidBand)
}

func isPricingValidationError(err error) bool {
	switch {
	case errors.Is(err, pricingdomain.ErrInvalidID),
		errors.Is(err, pricingdomain.ErrInvalidTier),
		errors.Is(err, pricingdomain.ErrPriceOutOfBand):
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch {
	case errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, broadcasterdomain.ErrInvalidTransition),
		errors.Is(err, packagedomain.ErrInvalidTransition),
		errors.Is(err, rightsdomain.ErrInvalidTransition):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, broadcasterdomain.ErrNotFound),
		errors.Is(err, eventdomain.ErrNotFound),
		errors.Is(err, packagedomain.ErrNotFound),
		errors.Is(err, rightsdomain.ErrNotFound),
		errors.Is(err, pricetierdomain.ErrNotFound),
		errors.Is(err, pricingdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func rateLimitedMessage(err error) string {
	if errors.Is(err, pricingdomain.ErrRecomputeInFlight) {
		return "a recompute for this event is already in progress"
	}
	return "too many recompute requests"
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog feeds the request logger's error_type/error_code fields.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "", payload.Type
	}
}
