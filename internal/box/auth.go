package box

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/muurk/fonbook/internal/logging"
)

const (
	// legacyLoginPayload is the navigation form of pre-SID firmware, with
	// the password appended
	legacyLoginPayload = "getpage=../html/de/menus/menu2.html&errorpage=../html/index.html&var:lang=de&var:pagename=home&var:menu=home&=&login:command/password=%s"

	// sidResponsePayload answers a webcm challenge
	sidResponsePayload = "login:command/response=%s&getpage=../html/login_sid.xml"
)

var (
	challengePattern  = regexp.MustCompile(`(?i)<Challenge>([A-Za-z0-9]*)</Challenge>`)
	loginErrorPattern = regexp.MustCompile(`<p class="errorMessage">(.*?)</p>`)
)

// Login detects the login style if needed and performs its handshake.
//
// It returns false with a nil error when the box answered the challenge
// without a session id. Hard rejections (bad status, missing challenge,
// a zero session id) are LoginFailed errors. A failed session is terminal:
// retrying means creating a new Client.
func (c *Client) Login(ctx context.Context) (bool, error) {
	switch c.session.State {
	case StateAuthenticated:
		return true, nil
	case StateFailed:
		return false, NewLoginError("session already failed; create a new client to retry")
	}

	style, err := c.Detect(ctx)
	if err != nil {
		return false, err
	}

	var ok bool
	switch style {
	case StyleAlreadyAuthenticated:
		ok = true
	case StyleDigestPerRequest:
		// every SOAP request carries its own digest credentials
		if err = c.requirePassword(); err == nil {
			ok = true
		}
	case StyleLegacyForm:
		if err = c.requirePassword(); err == nil {
			err = c.loginLegacy(ctx)
			ok = err == nil
		}
	case StyleWebcmChallenge, StyleLuaChallenge:
		if c.session.HasSID() {
			ok = true
			break
		}
		if err = c.requirePassword(); err == nil {
			ok, err = c.loginChallenge(ctx, style)
		}
	default:
		err = NewLoginError(fmt.Sprintf("unknown login style %s", style))
	}

	if err != nil || !ok {
		c.session.State = StateFailed
		logging.Warn("Login failed",
			zap.String("host", c.creds.Host),
			zap.Stringer("style", style),
			zap.Error(err),
		)
		return false, err
	}

	c.session.State = StateAuthenticated
	logging.Info("Logged in",
		zap.String("host", c.creds.Host),
		zap.Stringer("style", style),
		zap.Bool("has_sid", c.session.HasSID()),
	)
	return true, nil
}

// NeedsPassword reports whether Login will send the password. It runs
// detection first, so a box that hands out a session without a login
// never triggers a password prompt.
func (c *Client) NeedsPassword(ctx context.Context) (bool, error) {
	if c.session.State == StateAuthenticated || c.creds.Password != "" {
		return false, nil
	}
	style, err := c.Detect(ctx)
	if err != nil {
		return false, err
	}
	switch style {
	case StyleAlreadyAuthenticated:
		return false, nil
	case StyleWebcmChallenge, StyleLuaChallenge:
		return !c.session.HasSID(), nil
	default:
		return true, nil
	}
}

// SetPassword replaces the password used by Login and by digest requests.
func (c *Client) SetPassword(password string) {
	c.creds.Password = password
	if c.digest != nil {
		c.digest.Password = password
	}
}

func (c *Client) requirePassword() error {
	if c.creds.Password == "" {
		return NewSessionRequiredError("the box requires a login but no password was given")
	}
	return nil
}

// loginLegacy posts the plaintext password. The box keeps the session in
// a cookie, so no session id is captured.
func (c *Client) loginLegacy(ctx context.Context) error {
	payload := fmt.Sprintf(legacyLoginPayload, url.QueryEscape(c.creds.Password))

	resp, err := c.postForm(ctx, c.url(webcmPath), payload)
	if err != nil {
		return NewUnreachableError("legacy login failed", c.creds.Host, err)
	}
	if resp.status != http.StatusOK {
		e := NewLoginError("unknown returncode")
		e.StatusCode = resp.status
		return e
	}
	if m := loginErrorPattern.FindSubmatch(resp.body); m != nil {
		return NewLoginError(fmt.Sprintf("box rejected the password: %s", m[1]))
	}

	c.session.SID = ""
	return nil
}

// loginChallenge runs the challenge/response handshake of webcm and lua boxes.
func (c *Client) loginChallenge(ctx context.Context, style LoginStyle) (bool, error) {
	c.session.State = StateAwaitingChallenge

	var resp *response
	var err error
	if style == StyleWebcmChallenge {
		resp, err = c.postForm(ctx, c.url(webcmPath), sidChallengePayload)
	} else {
		resp, err = c.get(ctx, c.url(luaLoginPath))
	}
	if err != nil {
		return false, NewUnreachableError("challenge request failed", c.creds.Host, err)
	}
	if resp.status != http.StatusOK {
		e := NewLoginError("unknown returncode")
		e.StatusCode = resp.status
		return false, e
	}

	m := challengePattern.FindSubmatch(resp.body)
	if m == nil {
		return false, NewLoginError("challenge string not found")
	}

	answer, err := ComputeResponse(string(m[1]), c.creds.Password)
	if err != nil {
		return false, err
	}

	if style == StyleWebcmChallenge {
		resp, err = c.postForm(ctx, c.url(webcmPath), fmt.Sprintf(sidResponsePayload, answer))
	} else {
		form := url.Values{}
		form.Set("response", answer)
		form.Set("username", c.creds.Username)
		resp, err = c.postForm(ctx, c.url(luaLoginPath), form.Encode())
	}
	if err != nil {
		return false, NewUnreachableError("challenge response failed", c.creds.Host, err)
	}
	if resp.status != http.StatusOK {
		e := NewLoginError("unknown returncode")
		e.StatusCode = resp.status
		return false, e
	}

	sid, found := findSID(resp.body)
	if !found || sid == "" {
		return false, nil
	}
	// non-numeric ids are opaque tokens; only a numeric zero is a rejection
	if n, err := strconv.ParseUint(sid, 10, 64); err == nil && n == 0 {
		return false, NewLoginError(fmt.Sprintf("could not login (sid is %s)", sid))
	}

	c.session.SID = sid
	return true, nil
}
