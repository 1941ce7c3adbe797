package monitor

import "fmt"

// ErrorCode classifies monitor failures. Callers translate these onto the
// wire; the codes themselves are transport-agnostic.
type ErrorCode int

const (
	// CodeNotImplemented means no capture backend exists for the kind on
	// this platform. Sticky for the process lifetime.
	CodeNotImplemented ErrorCode = iota + 1
	// CodePermissionDenied means the OS refused capture access. Sticky for
	// the process lifetime; recovering requires granting access and
	// restarting.
	CodePermissionDenied
	// CodeInvalidCursor means a read was attempted with a negative cursor.
	CodeInvalidCursor
)

// String returns the snake_case code name.
func (c ErrorCode) String() string {
	switch c {
	case CodeNotImplemented:
		return "not_implemented"
	case CodePermissionDenied:
		return "permission_denied"
	case CodeInvalidCursor:
		return "invalid_cursor"
	default:
		return "unknown"
	}
}

// Error is a monitor failure with a stable code and the kind it concerns.
type Error struct {
	Code ErrorCode
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// NotImplemented reports a missing platform backend. detail should tell an
// operator what native work is outstanding.
func NotImplemented(kind Kind, detail string) *Error {
	return &Error{
		Code: CodeNotImplemented,
		Kind: kind,
		Msg:  fmt.Sprintf("%s monitor not implemented: %s", kind, detail),
	}
}

// PermissionDenied reports the OS refusing capture access.
func PermissionDenied(kind Kind, detail string) *Error {
	return &Error{
		Code: CodePermissionDenied,
		Kind: kind,
		Msg:  fmt.Sprintf("%s monitor permission denied: %s", kind, detail),
	}
}

// InvalidCursor reports a negative read cursor.
func InvalidCursor(kind Kind, cursor int) *Error {
	return &Error{
		Code: CodeInvalidCursor,
		Kind: kind,
		Msg:  fmt.Sprintf("invalid cursor %d for %s monitor: cursor must be non-negative", cursor, kind),
	}
}
