package box

import (
	"context"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/muurk/fonbook/internal/logging"
)

// Administrative endpoints shared by detection and login
const (
	webcmPath    = "/cgi-bin/webcm"
	luaLoginPath = "/login_sid.lua"

	// sidChallengePayload asks webcm for login_sid.xml
	sidChallengePayload = "getpage=../html/login_sid.xml"
)

var (
	writeAccessPattern = regexp.MustCompile(`(?i)<iswriteaccess>(\d)</iswriteaccess>`)
	sessionInfoPattern = regexp.MustCompile(`(?is)<SessionInfo>.*</SessionInfo>`)
	sidPattern         = regexp.MustCompile(`<SID>(.*?)</SID>`)
)

// findSID extracts the session id of a login page.
func findSID(body []byte) (string, bool) {
	m := sidPattern.FindSubmatch(body)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// Detect queries the box and decides which login style it speaks.
//
// The decision is made once; later calls return the cached style.
// Digest clients never run detection. Transport failures abort with an
// unreachable error and are not retried.
func (c *Client) Detect(ctx context.Context) (LoginStyle, error) {
	if c.session.Style != StyleUnknown {
		return c.session.Style, nil
	}

	style, sid, err := c.detect(ctx)
	if err != nil {
		c.session.State = StateFailed
		return StyleUnknown, err
	}

	c.session.Style = style
	if !IsZeroSID(sid) {
		c.session.SID = sid
	}

	logging.Info("Login style detected",
		zap.String("host", c.creds.Host),
		zap.Stringer("style", style),
		zap.Bool("has_sid", c.session.HasSID()),
	)
	return style, nil
}

func (c *Client) detect(ctx context.Context) (LoginStyle, string, error) {
	resp, err := c.postForm(ctx, c.url(webcmPath), sidChallengePayload)
	if err != nil {
		return StyleUnknown, "", NewUnreachableError("webcm request failed", c.creds.Host, err)
	}
	logging.LogDetection("webcm", resp.status)

	if resp.status != http.StatusOK {
		return StyleLegacyForm, "", nil
	}

	if m := writeAccessPattern.FindSubmatch(resp.body); m != nil {
		sid, _ := findSID(resp.body)
		if string(m[1]) == "0" && !IsZeroSID(sid) {
			return StyleAlreadyAuthenticated, sid, nil
		}
		return StyleWebcmChallenge, "", nil
	}

	resp, err = c.get(ctx, c.url(luaLoginPath))
	if err != nil {
		return StyleUnknown, "", NewUnreachableError("login_sid.lua request failed", c.creds.Host, err)
	}
	logging.LogDetection("login_sid.lua", resp.status)

	if sessionInfoPattern.Match(resp.body) {
		sid, _ := findSID(resp.body)
		return StyleLuaChallenge, sid, nil
	}

	// Neither login page exists: the box does not ask for a login at all.
	logging.Warn("No login indicator found, assuming no login is required",
		zap.String("host", c.creds.Host),
	)
	return StyleAlreadyAuthenticated, "", nil
}
