package checker

// The gateway failure taxonomy. Each kind wraps a human-readable message
// and is recoverable: no failure ends the session or discards data that
// was already fetched successfully.

// AnalysisError reports a failed symptom analysis request.
type AnalysisError struct {
	Message string
}

func (e *AnalysisError) Error() string { return e.Message }

// DetailError reports a failed condition detail request.
type DetailError struct {
	Message string
}

func (e *DetailError) Error() string { return e.Message }

// AdviceError reports a failed general advice request.
type AdviceError struct {
	Message string
}

func (e *AdviceError) Error() string { return e.Message }

// PrepError reports a failed visit preparation request.
type PrepError struct {
	Message string
}

func (e *PrepError) Error() string { return e.Message }
