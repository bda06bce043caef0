package box

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/fonbook/internal/urls"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeUnreachable indicates the box could not be reached (connection refused, DNS, timeout)
	ErrTypeUnreachable ErrorType = iota
	// ErrTypeLoginFailed indicates the handshake completed but the box rejected it
	ErrTypeLoginFailed
	// ErrTypeCharset indicates the password cannot be represented in ISO-8859-1
	ErrTypeCharset
	// ErrTypeSessionRequired indicates an operation needing a session was called without one
	ErrTypeSessionRequired
	// ErrTypeRequestFailed indicates a non-transport failure of an authenticated request
	ErrTypeRequestFailed
	// ErrTypeParse indicates malformed phonebook XML
	ErrTypeParse
)

// NetworkErrorSubtype provides more specific classification of unreachable errors
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeUnreachable:
		return "Device Unreachable"
	case ErrTypeLoginFailed:
		return "Login Failed"
	case ErrTypeCharset:
		return "Unsupported Credential Charset"
	case ErrTypeSessionRequired:
		return "Session Required"
	case ErrTypeRequestFailed:
		return "Request Failed"
	case ErrTypeParse:
		return "Phonebook Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// BoxError represents an error that occurred while talking to a box
type BoxError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
	Host           string              // Box host (for context)
}

// Error implements the error interface
func (e *BoxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *BoxError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns an unreachable
// error with the matching subtype.
func ClassifyNetworkError(err error, host string) *BoxError {
	if err == nil {
		return nil
	}

	unreachable := func(msg string, sub NetworkErrorSubtype) *BoxError {
		return &BoxError{
			Type:           ErrTypeUnreachable,
			Message:        msg,
			Err:            err,
			NetworkSubtype: sub,
			Host:           host,
		}
	}

	if os.IsTimeout(err) {
		return unreachable("request timed out", NetworkErrorTimeout)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return unreachable(fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name), NetworkErrorDNS)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return unreachable("box refused connection", NetworkErrorConnectionRefused)
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return unreachable("host unreachable", NetworkErrorHostUnreachable)
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return unreachable("network unreachable", NetworkErrorNetworkUnreachable)
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return unreachable("network error occurred", NetworkErrorGeneral)
}

// isConnectionFailure reports whether err is a connection-level failure.
// Everything else raised by the transport (TLS, malformed responses) is a
// request failure.
func isConnectionFailure(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// newTransportError maps an http.Client error to unreachable or request-failed.
func newTransportError(message, host string, err error) *BoxError {
	if isConnectionFailure(err) {
		classified := ClassifyNetworkError(err, host)
		classified.Message = message + ": " + classified.Message
		return classified
	}
	return &BoxError{Type: ErrTypeRequestFailed, Message: message, Err: err, Host: host}
}

// NewUnreachableError creates an unreachable error with automatic classification
func NewUnreachableError(message, host string, err error) *BoxError {
	classified := ClassifyNetworkError(err, host)
	if classified != nil {
		classified.Message = message + ": " + classified.Message
		return classified
	}
	return &BoxError{Type: ErrTypeUnreachable, Message: message, Host: host}
}

// NewLoginError creates a login failure
func NewLoginError(message string) *BoxError {
	return &BoxError{Type: ErrTypeLoginFailed, Message: message}
}

// NewCharsetError creates an unsupported-charset error
func NewCharsetError(err error) *BoxError {
	return &BoxError{
		Type:    ErrTypeCharset,
		Message: "password contains characters outside ISO-8859-1",
		Err:     err,
	}
}

// NewSessionRequiredError creates a session-required error
func NewSessionRequiredError(message string) *BoxError {
	return &BoxError{Type: ErrTypeSessionRequired, Message: message}
}

// NewRequestError creates a request failure for an unexpected status code
func NewRequestError(statusCode int, message string) *BoxError {
	return &BoxError{Type: ErrTypeRequestFailed, Message: message, StatusCode: statusCode}
}

// NewParseError creates a phonebook parse error
func NewParseError(message string, err error) *BoxError {
	return &BoxError{Type: ErrTypeParse, Message: message, Err: err}
}

func hasType(err error, types ...ErrorType) bool {
	var boxErr *BoxError
	if !errors.As(err, &boxErr) {
		return false
	}
	for _, t := range types {
		if boxErr.Type == t {
			return true
		}
	}
	return false
}

// IsUnreachable checks if an error is a DeviceUnreachable error
func IsUnreachable(err error) bool { return hasType(err, ErrTypeUnreachable) }

// IsLoginFailed checks if an error is a LoginFailed error
func IsLoginFailed(err error) bool { return hasType(err, ErrTypeLoginFailed) }

// IsCharsetError checks if an error is an UnsupportedCredentialCharset error
func IsCharsetError(err error) bool { return hasType(err, ErrTypeCharset) }

// IsSessionRequired checks if an error is a SessionRequired error
func IsSessionRequired(err error) bool { return hasType(err, ErrTypeSessionRequired) }

// IsRequestFailed checks if an error is a RequestFailed error
func IsRequestFailed(err error) bool { return hasType(err, ErrTypeRequestFailed) }

// IsParseError checks if an error is a PhonebookParseError
func IsParseError(err error) bool { return hasType(err, ErrTypeParse) }

// TroubleshootingHints returns user-facing advice for an error.
// Returns nil for errors that did not come from this package.
func TroubleshootingHints(err error) []string {
	var boxErr *BoxError
	if !errors.As(err, &boxErr) {
		return nil
	}

	switch boxErr.Type {
	case ErrTypeUnreachable:
		switch boxErr.NetworkSubtype {
		case NetworkErrorDNS:
			return []string{
				"Use the IP address instead of the hostname",
				"Check that fritz.box resolves on this network",
			}
		case NetworkErrorConnectionRefused:
			return []string{
				"Check the host and port",
				"For --digest, TR-064 access must be enabled on the box",
				"TR-064 reference: " + urls.AVMInterfaces,
			}
		case NetworkErrorTimeout:
			return []string{
				"Check that the box is powered on",
				"Try increasing --timeout",
			}
		default:
			return []string{
				"Verify the box address is correct",
				"Check that you are on the same network as the box",
			}
		}
	case ErrTypeLoginFailed:
		return []string{
			"Check the password (and username, if the box uses user accounts)",
			"The box may block logins for a while after failed attempts",
			"Login protocol reference: " + urls.AVMInterfaces,
		}
	case ErrTypeCharset:
		return []string{
			"Passwords are hashed as ISO-8859-1; characters such as € cannot be used",
			"Change the box password to use Latin-1 characters only",
		}
	case ErrTypeSessionRequired:
		return []string{
			"Supply a password with --password or FONBOOK_PASSWORD",
		}
	case ErrTypeParse:
		return []string{
			"The session is probably invalid; the box answered with an HTML page",
			"Try again, or run with FONBOOK_LOG_LEVEL=debug to see the response",
		}
	case ErrTypeRequestFailed:
		if boxErr.StatusCode != 0 {
			return []string{fmt.Sprintf("The box answered HTTP %d; check the phonebook id", boxErr.StatusCode)}
		}
		return []string{"The request could not be completed; try again"}
	}
	return nil
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var boxErr *BoxError
	if !errors.As(err, &boxErr) {
		return err.Error()
	}

	switch boxErr.Type {
	case ErrTypeUnreachable:
		switch boxErr.NetworkSubtype {
		case NetworkErrorTimeout:
			return "Box not responding (timeout)"
		case NetworkErrorConnectionRefused:
			return "Box refused connection"
		case NetworkErrorDNS:
			return "Cannot resolve box hostname"
		default:
			return "Box unreachable - check network connection"
		}
	case ErrTypeLoginFailed:
		return "Login failed - check credentials"
	case ErrTypeCharset:
		return "Password contains unsupported characters"
	case ErrTypeSessionRequired:
		return "Not logged in"
	case ErrTypeRequestFailed:
		if boxErr.StatusCode != 0 {
			return fmt.Sprintf("Box error (HTTP %d)", boxErr.StatusCode)
		}
		return strings.TrimSpace("Request failed: " + boxErr.Message)
	case ErrTypeParse:
		return "Failed to parse phonebook (are you logged in?)"
	default:
		return boxErr.Message
	}
}
