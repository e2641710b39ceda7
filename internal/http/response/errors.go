package response

import (
	"errors"
	"net/http"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/apierr"
)

const (
	msgStorage  = "We could not reach your saved data. Please try again."
	msgInternal = "internal server error"
)

// FromError maps service errors onto HTTP statuses. Gateway and storage
// failures get fixed user-facing messages; the rest keep their own text.
func FromError(err error) *apierr.Error {
	var (
		ae *apierr.Error
		rl *domain.RateLimitError
		pe *domain.ParseError
		ge *domain.GenerationError
		se *domain.StorageError
	)
	switch {
	case err == nil:
		return apierr.New(http.StatusInternalServerError, "internal_error", errors.New(msgInternal))
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &rl):
		return apierr.New(http.StatusTooManyRequests, "rate_limited", errors.New(domain.RateLimitMessage))
	case errors.Is(err, domain.ErrUnauthorized):
		return apierr.Unauthorized("unauthorized", err)
	case errors.Is(err, domain.ErrInvalidArgument):
		return apierr.BadRequest("invalid_argument", err)
	case errors.Is(err, domain.ErrNotFound):
		return apierr.NotFound("not_found", err)
	case errors.Is(err, domain.ErrGenerationInProgress):
		return apierr.Conflict("generation_in_progress", err)
	case errors.Is(err, domain.ErrInvalidState):
		return apierr.Conflict("invalid_state", err)
	case errors.As(err, &pe):
		return apierr.New(http.StatusBadGateway, "parse_error", errors.New(domain.UserMessage(pe)))
	case errors.As(err, &ge):
		return apierr.New(http.StatusBadGateway, "generation_failed", errors.New(ge.UserMessage()))
	case errors.As(err, &se):
		return apierr.New(http.StatusInternalServerError, "storage_"+string(se.Code), errors.New(msgStorage))
	default:
		return apierr.New(http.StatusInternalServerError, "internal_error", errors.New(msgInternal))
	}
}
