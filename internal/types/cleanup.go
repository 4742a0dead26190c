package types

// CleanupOutcome is the terminal state of one cleanup attempt.
type CleanupOutcome string

const (
	CleanupSuccess      CleanupOutcome = "success"
	CleanupSkipped      CleanupOutcome = "skipped"
	CleanupError        CleanupOutcome = "error"
	CleanupUnstructured CleanupOutcome = "unstructured"
)

// ErrorKind classifies why a cleanup backend failed.
type ErrorKind string

const (
	KindNone         ErrorKind = ""
	KindConnection   ErrorKind = "connection_error"
	KindRateLimited  ErrorKind = "rate_limited"
	KindAuthFailed   ErrorKind = "auth_failed"
	KindProtocol     ErrorKind = "protocol_error"
	KindTimeout      ErrorKind = "timeout"
	KindUnstructured ErrorKind = "unstructured"
	KindUnexpected   ErrorKind = "unexpected"
)

// CleanupResult is what a single backend hands back. Text is only meaningful
// on success; Detail carries the diagnostic (error message, raw model output).
type CleanupResult struct {
	Text    string         `json:"text,omitempty"`
	Outcome CleanupOutcome `json:"outcome"`
	Kind    ErrorKind      `json:"error_kind,omitempty"`
	Detail  string         `json:"detail,omitempty"`
}

// Attempt records one backend try in the cleanup chain.
type Attempt struct {
	Backend string         `json:"backend"`
	Outcome CleanupOutcome `json:"outcome"`
	Kind    ErrorKind      `json:"error_kind,omitempty"`
	Detail  string         `json:"detail,omitempty"`
}
