package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrGenerationInProgress = errors.New("generation already in progress")
	ErrInvalidState         = errors.New("invalid state")
	ErrUnauthorized         = errors.New("unauthorized")
)

const (
	RateLimitMessage  = "Gemini API rate limit reached. Please wait a few minutes and try again."
	GenerationMessage = "Failed to generate study material. Please try again later."
	MoreMessage       = "Failed to generate more study material. Please try again later."
	QuestionsMessage  = "Failed to generate test questions. Please try again later."
	InsightsMessage   = "Failed to generate performance insights. Please try again later."
)

// OpGenerateMore tags failures of a follow-up study material batch.
const OpGenerateMore = "GenerateMore"


// RateLimitError marks a gateway 429. Its message is shown to users verbatim.
type RateLimitError struct {
	Op    string
	Cause error
}

func (e *RateLimitError) Error() string {
	return RateLimitMessage
}

func (e *RateLimitError) Unwrap() error { return e.Cause }

// ParseError is a gateway response that did not match the expected shape.
type ParseError struct {
	Op      string
	Message string
	Raw     string
	Cause   error
}

func (e *ParseError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "could not parse gateway response"
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

// GenerationError is any gateway failure that is not a rate limit.
type GenerationError struct {
	Op    string
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause == nil {
		return GenerationMessage
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return e.Cause.Error()
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// UserMessage picks the user-facing text for the operation that failed.
func (e *GenerationError) UserMessage() string {
	switch e.Op {
	case OpGenerateMore:
		return MoreMessage
	case "GenerateQuestions":
		return QuestionsMessage
	case "PerformanceInsights":
		return InsightsMessage
	default:
		return GenerationMessage
	}
}

type StorageCode string

const (
	StorageNotFound  StorageCode = "not_found"
	StorageConflict  StorageCode = "conflict"
	StorageRetryable StorageCode = "retryable"
	StorageInternal  StorageCode = "internal"
)

// StorageError wraps a repository or bucket failure with its classification.
type StorageError struct {
	Code  StorageCode
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	op := strings.TrimSpace(e.Op)
	switch {
	case op != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %v (%s)", op, e.Cause, e.Code)
	case e.Cause != nil:
		return fmt.Sprintf("%v (%s)", e.Cause, e.Code)
	default:
		return fmt.Sprintf("storage error (%s)", e.Code)
	}
}

// Unwrap exposes both the cause and ErrNotFound for not-found classifications.
func (e *StorageError) Unwrap() []error {
	out := []error{}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	if e.Code == StorageNotFound {
		out = append(out, ErrNotFound)
	}
	return out
}

func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// UserMessage is the text surfaced to users for a pipeline error.
func UserMessage(err error) string {
	var (
		rl *RateLimitError
		pe *ParseError
		ge *GenerationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rl):
		return RateLimitMessage
	case errors.As(err, &ge):
		return ge.UserMessage()
	case errors.As(err, &pe):
		if strings.TrimSpace(pe.Message) != "" {
			return pe.Message
		}
		return GenerationMessage
	default:
		return GenerationMessage
	}
}
