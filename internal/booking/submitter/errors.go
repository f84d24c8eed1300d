package submitter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// GenericMessage is shown when a failure carries no usable explanation.
const GenericMessage = "Your request could not be sent. Please try again."

// Error is a failed submission, rendered as one or more user-facing messages.
type Error struct {
	Status   int
	Messages []string
	Fields   map[string]string
	Err      error
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return GenericMessage
	}
	return strings.Join(e.Messages, "; ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessages implements the wizard's message extraction.
func (e *Error) UserMessages() []string {
	if len(e.Messages) == 0 {
		return []string{GenericMessage}
	}
	return e.Messages
}

func genericError(status int, err error) *Error {
	return &Error{Status: status, Messages: []string{GenericMessage}, Err: err}
}

// ParseErrorBody extracts either a flat message (detail, message or error) or a
// field-keyed map rendered as one "field: message" line per field. Bodies that
// match neither shape produce the generic message.
func ParseErrorBody(status int, body []byte) *Error {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return genericError(status, fmt.Errorf("decode error body: %w", err))
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		if list, ok := raw.([]interface{}); ok {
			if msgs := flatten(list); len(msgs) > 0 {
				return &Error{Status: status, Messages: msgs}
			}
		}
		return genericError(status, nil)
	}

	for _, key := range []string{"detail", "message", "error"} {
		if msg, ok := obj[key].(string); ok && strings.TrimSpace(msg) != "" {
			return &Error{Status: status, Messages: []string{strings.TrimSpace(msg)}}
		}
	}

	if nested, ok := obj["errors"].(map[string]interface{}); ok {
		obj = nested
	}

	fields := fieldMessages(obj)
	if len(fields) == 0 {
		return genericError(status, nil)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, name+": "+fields[name])
	}
	return &Error{Status: status, Messages: msgs, Fields: fields}
}

func fieldMessages(obj map[string]interface{}) map[string]string {
	fields := make(map[string]string, len(obj))
	for name, value := range obj {
		var msgs []string
		switch v := value.(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				msgs = []string{v}
			}
		case []interface{}:
			msgs = flatten(v)
		}
		if len(msgs) > 0 {
			fields[name] = strings.Join(msgs, " ")
		}
	}
	return fields
}

func flatten(list []interface{}) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
