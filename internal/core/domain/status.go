package domain

import "net/http"

// StatusDecision is the authorization outcome derived from an account status.
type StatusDecision struct {
	Allowed    bool
	HTTPStatus int
	Message    string
}

var statusDecisions = map[UserStatus]StatusDecision{
	UserStatusActive:    {Allowed: true, HTTPStatus: http.StatusOK},
	UserStatusLocked:    {HTTPStatus: http.StatusLocked, Message: "account is locked"},
	UserStatusDisabled:  {HTTPStatus: http.StatusForbidden, Message: "account is disabled"},
	UserStatusSuspended: {HTTPStatus: http.StatusForbidden, Message: "account is suspended"},
	UserStatusExpired:   {HTTPStatus: http.StatusUnauthorized, Message: "account has expired"},
}

// CheckStatus maps an account status to an authorization decision.
// Unrecognized values deny with a generic message rather than allow.
func CheckStatus(status UserStatus) StatusDecision {
	if decision, ok := statusDecisions[status]; ok {
		return decision
	}
	return StatusDecision{HTTPStatus: http.StatusBadRequest, Message: "account status is not recognized"}
}

// StatusError reports a login denied by the account status gate.
type StatusError struct {
	Status   UserStatus
	Decision StatusDecision
}

// NewStatusError builds a StatusError for the given status.
func NewStatusError(status UserStatus) *StatusError {
	return &StatusError{Status: status, Decision: CheckStatus(status)}
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	return e.Decision.Message
}
