package guard

import (
	"fmt"
	"net/http"
)

// Code identifies the kind of a guard denial. Codes are stable and safe
// to branch on in clients.
type Code string

const (
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeModuleAccessDenied Code = "MODULE_ACCESS_DENIED"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
)

// Error is a terminal guard denial. A denial is final for the request;
// the dispatcher converts it into a response immediately.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the denial kind onto the dispatcher contract: identity
// problems are 401, authorization problems are 403.
func (e *Error) HTTPStatus() int {
	if e.Code == CodeUnauthenticated {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

func errUnauthenticated(message string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: message}
}

func errModuleAccessDenied(moduleID string) *Error {
	return &Error{Code: CodeModuleAccessDenied, Message: fmt.Sprintf("module %q is not active for this account", moduleID)}
}

func errPermissionDenied(permission string) *Error {
	return &Error{Code: CodePermissionDenied, Message: fmt.Sprintf("missing required permission %q", permission)}
}
