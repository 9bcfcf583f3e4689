package auth

import "strings"

// Authorizer decides whether a signed in learner may author courses
type Authorizer interface {
	IsAdmin(claims *AppTokenClaims) bool
}

// EmailAllowList grants admin rights to a fixed set of emails, compared case-insensitively
type EmailAllowList struct {
	emails map[string]struct{}
}

var _ Authorizer = &EmailAllowList{}

// NewEmailAllowList create an allow list from emails
func NewEmailAllowList(emails []string) *EmailAllowList {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	return &EmailAllowList{emails: set}
}

func (al *EmailAllowList) IsAdmin(claims *AppTokenClaims) bool {
	if claims == nil {
		return false
	}
	_, ok := al.emails[strings.ToLower(claims.Email)]
	return ok
}
