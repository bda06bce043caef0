package box

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/icholy/digest"
	"go.uber.org/zap"

	"github.com/muurk/fonbook/internal/logging"
)

const (
	// DefaultHost is the name every FRITZ!Box answers to on its own network
	DefaultHost = "fritz.box"

	// DefaultTimeout is the overall HTTP timeout for every request
	DefaultTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds each phonebook call
	DefaultRequestTimeout = 5 * time.Second

	// DefaultSOAPPort is the TR-064 HTTPS port used by digest-style boxes
	DefaultSOAPPort = 49443

	// DefaultPhonebookID is the id of the box's main phonebook
	DefaultPhonebookID = "0"

	// DefaultPhonebookName is the export name sent with phonebook downloads
	DefaultPhonebookName = "Phonebook"
)

// Config holds per-client settings.
type Config struct {
	// Protocol for the administrative web interface ("http")
	Protocol string

	// Timeout is the overall timeout of every HTTP request
	Timeout time.Duration

	// RequestTimeout additionally bounds each phonebook call
	RequestTimeout time.Duration

	// Digest selects the SOAP-over-digest code path and skips detection
	Digest bool

	// SOAPPort is the HTTPS port for SOAP calls. Ignored when Host already
	// carries a port.
	SOAPPort int

	// InsecureSkipVerify disables TLS certificate verification for SOAP
	// calls. Boxes ship self-signed certificates, so this defaults to true;
	// anything on the path to the box can then impersonate it.
	InsecureSkipVerify bool
}

// DefaultConfig returns the settings used by the command line tool
func DefaultConfig() Config {
	return Config{
		Protocol:           "http",
		Timeout:            DefaultTimeout,
		RequestTimeout:     DefaultRequestTimeout,
		SOAPPort:           DefaultSOAPPort,
		InsecureSkipVerify: true,
	}
}

// Client talks to one box with one set of credentials.
//
// The session negotiated by Login is the only state shared between calls.
// A Client is not safe for concurrent use from multiple goroutines without
// external synchronization.
type Client struct {
	creds      Credentials
	config     Config
	httpClient *http.Client
	digest     *digest.Transport // nil unless config.Digest
	session    Session
}

// NewClient creates a client. No network traffic happens until Detect or
// Login is called.
func NewClient(creds Credentials, config Config) *Client {
	if creds.Host == "" {
		creds.Host = DefaultHost
	}
	defaults := DefaultConfig()
	if config.Protocol == "" {
		config.Protocol = defaults.Protocol
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if config.SOAPPort == 0 {
		config.SOAPPort = defaults.SOAPPort
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: config.InsecureSkipVerify} //nolint:gosec // self-signed box certificates

	// digest boxes answer every SOAP call with a 401 challenge; the
	// transport caches it per host and answers it on later requests
	var rt http.RoundTripper = transport
	var digestRT *digest.Transport
	if config.Digest {
		digestRT = &digest.Transport{
			Username:  creds.Username,
			Password:  creds.Password,
			Transport: transport,
		}
		rt = digestRT
	}

	// cookiejar.New only fails for a broken PublicSuffixList
	jar, _ := cookiejar.New(nil)

	c := &Client{
		creds:  creds,
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: rt,
			Jar:       jar,
		},
		digest: digestRT,
	}
	if config.Digest {
		c.session.Style = StyleDigestPerRequest
	}
	return c
}

// Host returns the box host this client talks to
func (c *Client) Host() string {
	return c.creds.Host
}

// Session returns a copy of the current session
func (c *Client) Session() Session {
	return c.session
}

// SID returns the current session id, or "" when none is held
func (c *Client) SID() string {
	if !c.session.HasSID() {
		return ""
	}
	return c.session.SID
}

// url builds an administrative interface URL
func (c *Client) url(path string) string {
	return c.config.Protocol + "://" + c.creds.Host + path
}

// soapHost returns host:port for SOAP calls
func (c *Client) soapHost() string {
	if _, _, err := net.SplitHostPort(c.creds.Host); err == nil {
		return c.creds.Host
	}
	return net.JoinHostPort(strings.Trim(c.creds.Host, "[]"), strconv.Itoa(c.config.SOAPPort))
}

var (
	sidElementPattern = regexp.MustCompile(`(?i)(<SID>)[^<]*(</SID>)`)
	sidParamPattern   = regexp.MustCompile(`(?i)(\bsid=)[0-9a-z]+`)
)

// redactSIDs masks session ids in a response body before it is logged
func redactSIDs(body []byte) []byte {
	body = sidElementPattern.ReplaceAll(body, []byte("${1}REDACTED${2}"))
	return sidParamPattern.ReplaceAll(body, []byte("${1}REDACTED"))
}

// response is a fully read HTTP response
type response struct {
	status int
	body   []byte
}

// do sends req and reads the whole body. Transport errors are returned
// unclassified so callers can decide between unreachable and request-failed.
func (c *Client) do(req *http.Request) (*response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Debug("Request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	logging.LogExchange(req.Method, req.URL.Path, resp.StatusCode, len(body), time.Since(start))
	if logging.DebugEnabled() {
		logging.LogRawBytes("Response body", redactSIDs(body))
	}

	return &response{status: resp.StatusCode, body: body}, nil
}

func (c *Client) get(ctx context.Context, url string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// postForm posts an already encoded form body. Several payloads must be
// sent byte for byte as the firmware expects them, so no re-encoding
// happens here.
func (c *Client) postForm(ctx context.Context, url, body string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}
