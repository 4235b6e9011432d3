package identity

import "fmt"

// MaxLabelLen is the maximum length in bytes of an edge label. Labels
// above this limit cannot be represented in the wire format, so hashing
// them is refused up front.
const MaxLabelLen = 255

// EncodingError reports content that cannot be canonically encoded and
// therefore cannot be identified.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("identity: unencodable content: %s", e.Reason)
}

// CheckLabel validates that a label fits the wire format. A nil label
// means "no label" and is always valid.
func CheckLabel(label []byte) error {
	if len(label) > MaxLabelLen {
		return &EncodingError{
			Reason: fmt.Sprintf("label too long: %d bytes (max %d)", len(label), MaxLabelLen),
		}
	}
	return nil
}
