package box

import (
	"net/url"
	"strings"
)

const (
	// localMediaPrefix marks contact images stored on the box's USB storage
	localMediaPrefix = "file:///var/media/ftp/"

	fileDownloadPath = "/nas/cgi-bin/luacgi_notimeout"
)

// DownloadURL turns a contact image reference into a URL that can be
// fetched with the current session.
//
// SID-style boxes only rewrite images on local storage; anything else is
// returned unchanged. Digest-style boxes serve every image from the TR-064
// port, so every URL is rewritten there. Without a session id the digest
// URL is returned without one.
func (c *Client) DownloadURL(raw string) string {
	if c.session.Style == StyleDigestPerRequest {
		return c.soapDownloadURL(raw)
	}

	if !strings.HasPrefix(raw, localMediaPrefix) {
		return raw
	}

	path := "/" + strings.TrimPrefix(raw, localMediaPrefix)
	query := "sid=" + url.QueryEscape(c.SID()) +
		"&script=%2fhttp_file_download.lua&command=httpdownload" +
		"&cmd_files=" + strings.ReplaceAll(url.QueryEscape(path), "+", "%20")

	u := url.URL{
		Scheme:   c.config.Protocol,
		Host:     c.creds.Host,
		Path:     fileDownloadPath,
		RawQuery: query,
	}
	return u.String()
}

func (c *Client) soapDownloadURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u := url.URL{
		Scheme:   "https",
		Host:     c.soapHost(),
		Path:     parsed.Path,
		RawPath:  parsed.RawPath,
		RawQuery: parsed.RawQuery,
	}
	if sid := c.SID(); sid != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&"
		}
		u.RawQuery += "sid=" + url.QueryEscape(sid)
	}
	return u.String()
}
