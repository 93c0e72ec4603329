package recommendations

// Kind classifies a failed recommendation request.
type Kind string

const (
	KindNoCandidates   Kind = "no_candidates"
	KindUnknownBackend Kind = "unknown_backend"
	KindBackend        Kind = "backend"
	KindEmptyOutput    Kind = "empty_output"
	KindInvalidJSON    Kind = "invalid_json"
	KindNotAList       Kind = "not_a_list"
)

// Error is the uniform failure result of a recommendation request. RawOutput
// is only set for KindInvalidJSON.
type Error struct {
	Kind      Kind
	Reason    string
	RawOutput string
	Err       error
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}
