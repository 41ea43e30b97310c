package assist

import "fmt"

// Error kinds.
const (
	KindNetwork = "network"
	KindAPI     = "api"
	KindParse   = "parse"
	KindShape   = "shape"
)

// Error is a failure from the external assist path. Every kind triggers
// the same caller behavior: fall back to the local heuristics, no retry.
type Error struct {
	Kind    string
	Message string
	Code    int // HTTP status, when applicable
	Err     error
}

func (e *Error) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("assist %s error (status %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("assist %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "request to assist endpoint failed", Err: err}
}

func newAPIError(code int, message string) *Error {
	return &Error{Kind: KindAPI, Code: code, Message: message}
}

func newParseError(content string, err error) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf("assist output is not valid JSON: %.120s", content), Err: err}
}

func newShapeError(message string) *Error {
	return &Error{Kind: KindShape, Message: message}
}
