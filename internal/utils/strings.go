package utils

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxStringLength is the preview length used in error messages.
const DefaultMaxStringLength = 500

// JSONToString encodes object as JSON, indented with two spaces when indent is
// true. Encoding failures are rendered as a JSON error object instead.
func JSONToString(object any, indent bool) string {
	var (
		encoded []byte
		err     error
	)
	if indent {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "failed to marshal to JSON: "+err.Error())
	}
	return string(encoded)
}

// TruncateString shortens s to maxLen bytes and records the original length.
// A non-positive maxLen means DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// TruncateStringDefault truncates s to DefaultMaxStringLength.
func TruncateStringDefault(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}
