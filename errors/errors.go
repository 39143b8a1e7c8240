package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrMissingAPIKey   = fmt.Errorf("missing api key")
	ErrUnknownProvider = fmt.Errorf("unknown llm provider")
	ErrEmptyPatterns   = fmt.Errorf("no keyword patterns have been found")
)
