package graphql

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"

	MsgUnknownError = "unknown error"
)

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is a GraphQL error as returned in the "errors" array
type Error struct {
	Message    string                 `json:"message"`
	Locations  []Location             `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return MsgUnknownError
	}
	return e.Message
}

// Code returns extensions.code
func (e *Error) Code() string {
	if e == nil {
		return ""
	}
	code, _ := e.Extensions["code"].(string)
	return code
}

func (e *Error) unauthenticated() bool {
	code := e.Code()
	return code == CodeUnauthenticated || code == CodeForbidden
}

type Errors []*Error

// UnmarshalJSON replaces null entries so that every element is usable
func (e *Errors) UnmarshalJSON(data []byte) error {
	var list []*Error
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	for i, err := range list {
		if err == nil {
			list[i] = &Error{Message: MsgUnknownError}
		}
	}
	*e = list
	return nil
}

func (e Errors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return "graphql: " + strings.Join(messages, "; ")
}

// IsUnauthenticated reports whether err carries an UNAUTHENTICATED or FORBIDDEN error
func IsUnauthenticated(err error) bool {
	var errs Errors
	if errors.As(err, &errs) {
		for _, e := range errs {
			if e.unauthenticated() {
				return true
			}
		}
	}
	var e *Error
	return errors.As(err, &e) && e.unauthenticated()
}
