package llm

import "errors"

var (
	// ErrBackendUnavailable indicates the Ollama server is unreachable.
	ErrBackendUnavailable = errors.New("analysis backend unavailable")

	// ErrTimeout indicates the request exceeded the tier's timeout.
	ErrTimeout = errors.New("analysis request timed out")

	// ErrInvalidOutput indicates the model response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid model output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)
