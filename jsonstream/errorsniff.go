package jsonstream

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ErrorTypeHeader carries the error shape id for some JSON protocols and
// wins over any body field.
const ErrorTypeHeader = "X-Amzn-Errortype"

// SniffErrorCode extracts the service error code and message from an error
// response payload. headerValue is the ErrorTypeHeader value, if present.
// Code identifiers may arrive as "Prefix#Code" or "Code:uri" forms; both
// decorations are stripped.
func SniffErrorCode(headerValue string, body []byte) (code, message string) {
	code = headerValue
	if code == "" {
		for _, path := range []string{"__type", "code"} {
			if v := gjson.GetBytes(body, path); v.Exists() {
				code = v.String()
				break
			}
		}
	}
	for _, path := range []string{"message", "Message", "error_message"} {
		if v := gjson.GetBytes(body, path); v.Exists() {
			message = v.String()
			break
		}
	}
	return sanitizeErrorCode(code), message
}

func sanitizeErrorCode(code string) string {
	if i := strings.IndexByte(code, ':'); i >= 0 {
		code = code[:i]
	}
	if i := strings.LastIndexByte(code, '#'); i >= 0 {
		code = code[i+1:]
	}
	return code
}
