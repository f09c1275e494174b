package audit

import (
	"encoding/json"
	"strings"
)

// Redacted replaces the value of a sensitive field.
const Redacted = "[REDACTED]"

// sensitiveFields are matched case-insensitively against payload keys at
// any depth.
var sensitiveFields = map[string]struct{}{
	"password":      {},
	"otp":           {},
	"token":         {},
	"authorization": {},
	"secret":        {},
	"mfacode":       {},
	"backupcode":    {},
	"mfatoken":      {},
	"mfabackupcode": {},
}

func isSensitive(key string) bool {
	_, ok := sensitiveFields[strings.ToLower(key)]
	return ok
}

// Redact returns a copy of body with sensitive values replaced. The input is
// never modified.
func Redact(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}
	out := make(map[string]any, len(body))
	for k, v := range body {
		if isSensitive(k) && v != nil {
			out[k] = Redacted
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Redact(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

// toDocument converts a decoded request struct into a generic document.
// Values that do not encode as a JSON object yield nil.
func toDocument(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil
	}
	return doc
}
