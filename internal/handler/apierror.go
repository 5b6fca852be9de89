package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/discipline-tracker/internal/ai"
)

// Stable machine-readable error codes returned in the error envelope.
// Clients are expected to branch on these, never on the messages.
const (
	CodeDoctrineRequired    = "doctrine_required"
	CodeCheckinRequired     = "daily_checkin_required"
	CodeCheckinExists       = "daily_checkin_exists"
	CodeAIResponseInvalid   = "ai_response_invalid"
	CodeUpstreamUnavailable = "openrouter_unavailable"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeValidationFailed    = "validation_failed"
	CodeInternal            = "internal_error"
)

// pageSize is the fixed page size for every paginated listing.
const pageSize = 15

// apiError writes the error envelope {"error":{code,message,details}}.
func apiError(c echo.Context, status int, code, message string, details echo.Map) error {
	body := echo.Map{"code": code, "message": message}
	if details != nil {
		body["details"] = details
	}
	return c.JSON(status, echo.Map{"error": body})
}

// aiFailure maps gateway/validator errors onto their HTTP shapes:
// 503 with upstream diagnostics for availability failures, 422 with
// the violated fields for contract violations.
func aiFailure(c echo.Context, err error) error {
	var unavailable *ai.UnavailableError
	if errors.As(err, &unavailable) {
		details := echo.Map{}
		if unavailable.StatusCode != 0 {
			details["status"] = unavailable.StatusCode
			details["body"] = unavailable.Body
		}
		return apiError(c, http.StatusServiceUnavailable, CodeUpstreamUnavailable, unavailable.Message, details)
	}
	var invalid *ai.InvalidResponseError
	if errors.As(err, &invalid) {
		return apiError(c, http.StatusUnprocessableEntity, CodeAIResponseInvalid, invalid.Message,
			echo.Map{"fields": invalid.Fields})
	}
	return apiError(c, http.StatusInternalServerError, CodeInternal, "unexpected failure", nil)
}

// authedUserID reads the uint64 id the JWT middleware stored in the
// context.  Zero means the middleware did not run.
func authedUserID(c echo.Context) uint64 {
	if id, ok := c.Get("user_id").(uint64); ok {
		return id
	}
	return 0
}

// pageParam parses ?page=N, defaulting to 1.
func pageParam(c echo.Context) int {
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		return n
	}
	return 1
}

// idParam parses the :id path parameter.
func idParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// pageResp is the uniform paginated listing envelope.
type pageResp struct {
	Data  any `json:"data"`
	Page  int `json:"page"`
	Total int `json:"total"`
}
