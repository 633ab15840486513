package grading

import "errors"

// Sentinel errors returned by the grade engine.
var (
	// ErrNoData means no assessment records matched; it is not a score of zero.
	ErrNoData = errors.New("no assessment data")

	ErrUnknownStudent = errors.New("unknown student")
	ErrUnknownSubject = errors.New("unknown subject")
	ErrUnknownTerm    = errors.New("unknown term")
	ErrUnknownScale   = errors.New("unknown grade scale")

	// ErrMisconfiguredGradeScale means a percentage fell outside every band.
	ErrMisconfiguredGradeScale = errors.New("misconfigured grade scale")

	// ErrInvalidGradeScale rejects a scale at creation time.
	ErrInvalidGradeScale = errors.New("invalid grade scale")

	ErrInvalidRecord  = errors.New("invalid assessment record")
	ErrInvalidSubject = errors.New("invalid subject")
	ErrInvalidTerm    = errors.New("invalid term")
)
