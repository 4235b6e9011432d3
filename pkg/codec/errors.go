package codec

import "fmt"

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind int

const (
	// Malformed marks truncated, corrupt or non-canonical input.
	Malformed DecodeErrorKind = iota
	// DanglingEndpoint marks an edge referencing a node the encoding
	// does not contain.
	DanglingEndpoint
	// VersionMismatch marks an unknown wire format version.
	VersionMismatch
)

func (k DecodeErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case DanglingEndpoint:
		return "dangling endpoint"
	case VersionMismatch:
		return "version mismatch"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// DecodeError reports why an encoding could not be decoded.
type DecodeError struct {
	Kind   DecodeErrorKind
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: %s: %s", e.Kind, e.Detail)
}

func malformed(detail string) *DecodeError {
	return &DecodeError{Kind: Malformed, Detail: detail}
}
