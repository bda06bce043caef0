package box

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/fonbook/internal/logging"
)

// TR-064 telephony service
const (
	onTelService     = "urn:dslforum-org:service:X_AVM-DE_OnTel:1"
	onTelControlPath = "/upnp/control/x_contact"

	actionGetPhonebookList = "GetPhonebookList"
	actionGetPhonebook     = "GetPhonebook"

	soapEnvelope = `<?xml version="1.0" encoding="utf-8"?>` +
		`<s:Envelope s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/" xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<s:Body><u:%s xmlns:u="%s">%s</u:%s></s:Body></s:Envelope>`
)

var (
	phonebookListPattern = regexp.MustCompile(`<NewPhonebookList>([^<]*)</NewPhonebookList>`)
	phonebookURLPattern  = regexp.MustCompile(`<NewPhonebookURL>([^<]*)</NewPhonebookURL>`)
	soapSIDPattern       = regexp.MustCompile(`sid=([0-9A-Za-z]+)`)
)

// soapCall posts one OnTel action. Digest authentication happens in the
// transport.
func (c *Client) soapCall(ctx context.Context, action, arguments string) ([]byte, error) {
	body := fmt.Sprintf(soapEnvelope, action, onTelService, arguments, action)
	endpoint := "https://" + c.soapHost() + onTelControlPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, newTransportError("failed to create SOAP request", c.creds.Host, err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", onTelService+"#"+action)

	logging.Debug("SOAP call", zap.String("action", action), zap.String("endpoint", endpoint))

	resp, err := c.do(req)
	if err != nil {
		return nil, newTransportError(action+" failed", c.creds.Host, err)
	}
	switch {
	case resp.status == http.StatusUnauthorized:
		e := NewLoginError("digest authentication rejected")
		e.StatusCode = resp.status
		return nil, e
	case resp.status != http.StatusOK:
		return nil, NewRequestError(resp.status, fmt.Sprintf("%s returned status %d", action, resp.status))
	}
	return resp.body, nil
}

// soapListPhonebooks reads the comma separated id list of GetPhonebookList.
func (c *Client) soapListPhonebooks(ctx context.Context) ([]string, error) {
	body, err := c.soapCall(ctx, actionGetPhonebookList, "")
	if err != nil {
		return nil, err
	}

	m := phonebookListPattern.FindSubmatch(body)
	if m == nil {
		return []string{}, nil
	}
	return uniqueIDs(strings.Split(string(m[1]), ",")), nil
}

// soapFetchPhonebook asks for the phonebook download URL, harvests the
// session id embedded in it and downloads the XML.
func (c *Client) soapFetchPhonebook(ctx context.Context, id string) ([]byte, error) {
	var arg strings.Builder
	arg.WriteString("<NewPhonebookID>")
	if err := xml.EscapeText(&arg, []byte(id)); err != nil {
		return nil, err
	}
	arg.WriteString("</NewPhonebookID>")

	body, err := c.soapCall(ctx, actionGetPhonebook, arg.String())
	if err != nil {
		return nil, err
	}

	sid := soapSIDPattern.FindSubmatch(body)
	if sid == nil || IsZeroSID(string(sid[1])) {
		return nil, NewLoginError("no session id in GetPhonebook response")
	}
	c.session.SID = string(sid[1])

	m := phonebookURLPattern.FindSubmatch(body)
	if m == nil {
		return nil, NewRequestError(0, "no phonebook URL in GetPhonebook response")
	}
	downloadURL := html.UnescapeString(string(m[1]))

	resp, err := c.get(ctx, downloadURL)
	if err != nil {
		return nil, newTransportError("phonebook download failed", c.creds.Host, err)
	}
	if resp.status != http.StatusOK {
		return nil, NewRequestError(resp.status, fmt.Sprintf("phonebook download returned status %d", resp.status))
	}
	return resp.body, nil
}
