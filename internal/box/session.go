package box

import (
	"fmt"
	"strings"
)

// LoginStyle identifies the authentication scheme a box speaks.
// It is decided once per Client and never changes afterwards.
type LoginStyle int

const (
	// StyleUnknown means detection has not run yet
	StyleUnknown LoginStyle = iota
	// StyleAlreadyAuthenticated: the box handed out a session without a login
	StyleAlreadyAuthenticated
	// StyleLegacyForm: plaintext password posted to webcm, cookie session
	StyleLegacyForm
	// StyleWebcmChallenge: challenge/response through webcm and login_sid.xml
	StyleWebcmChallenge
	// StyleLuaChallenge: challenge/response through login_sid.lua
	StyleLuaChallenge
	// StyleDigestPerRequest: TR-064 SOAP calls, each authenticated with HTTP digest
	StyleDigestPerRequest
)

// String returns the style name
func (s LoginStyle) String() string {
	switch s {
	case StyleUnknown:
		return "unknown"
	case StyleAlreadyAuthenticated:
		return "already-authenticated"
	case StyleLegacyForm:
		return "legacy-form"
	case StyleWebcmChallenge:
		return "webcm-challenge"
	case StyleLuaChallenge:
		return "lua-challenge"
	case StyleDigestPerRequest:
		return "digest-per-request"
	default:
		return fmt.Sprintf("LoginStyle(%d)", int(s))
	}
}

// requiresSID reports whether phonebook calls of this style must carry a
// session id. Legacy boxes rely on cookies, digest boxes on per-request auth.
func (s LoginStyle) requiresSID() bool {
	switch s {
	case StyleLegacyForm, StyleDigestPerRequest:
		return false
	default:
		return true
	}
}

// SessionState is the authenticator state
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAwaitingChallenge
	StateAuthenticated
	StateFailed
)

// String returns the state name
func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingChallenge:
		return "awaiting-challenge"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Session is the authentication state owned by one Client.
type Session struct {
	Style LoginStyle
	SID   string
	State SessionState
}

// HasSID reports whether the session holds a usable session id
func (s *Session) HasSID() bool {
	return !IsZeroSID(s.SID)
}

// IsZeroSID reports whether sid is absent or made only of zeros.
// Boxes answer "0000000000000000" when nobody is logged in.
func IsZeroSID(sid string) bool {
	sid = strings.TrimSpace(sid)
	return strings.Trim(sid, "0") == ""
}

// Credentials identify the box and the account used to log in.
type Credentials struct {
	Host     string
	Username string // optional; lua and digest logins send it when set
	Password string
}
