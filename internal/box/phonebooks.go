package box

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/fonbook/internal/logging"
	"github.com/muurk/fonbook/internal/phonebook"
)

const (
	phonebookListPath = "/fon_num/fonbook_select.lua"
	firmwareCfgPath   = "/cgi-bin/firmwarecfg"
)

var bookIDPattern = regexp.MustCompile(`uiBookid:(\d+)`)

// requireSession checks that phonebook calls may be made.
func (c *Client) requireSession() error {
	if c.session.Style == StyleDigestPerRequest {
		return nil
	}
	if c.session.State != StateAuthenticated {
		return NewSessionRequiredError("login required")
	}
	if c.session.Style.requiresSID() && !c.session.HasSID() {
		return NewSessionRequiredError("no session id")
	}
	return nil
}

// ListPhonebooks returns the de-duplicated, sorted ids of the box's
// phonebooks. An empty slice with a nil error means the box answered but
// listed no phonebooks.
func (c *Client) ListPhonebooks(ctx context.Context) ([]string, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	if c.session.Style == StyleDigestPerRequest {
		return c.soapListPhonebooks(ctx)
	}

	endpoint := c.url(phonebookListPath) + "?sid=" + url.QueryEscape(c.session.SID)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, newTransportError("phonebook list request failed", c.creds.Host, err)
	}
	if resp.status != http.StatusOK {
		return nil, NewRequestError(resp.status, fmt.Sprintf("phonebook list returned status %d", resp.status))
	}

	var ids []string
	for _, m := range bookIDPattern.FindAllSubmatch(resp.body, -1) {
		ids = append(ids, string(m[1]))
	}
	ids = uniqueIDs(ids)

	logging.Debug("Phonebooks listed", zap.Strings("ids", ids))
	return ids, nil
}

// uniqueIDs trims, de-duplicates and sorts phonebook ids
func uniqueIDs(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

// GetPhonebook downloads and parses one phonebook
func (c *Client) GetPhonebook(ctx context.Context, id string) (phonebook.Phonebook, error) {
	return c.GetPhonebookNamed(ctx, id, DefaultPhonebookName)
}

// GetPhonebookNamed is GetPhonebook with an explicit export name. The name
// only matters to SID-style boxes, which echo it in the export.
func (c *Client) GetPhonebookNamed(ctx context.Context, id, name string) (phonebook.Phonebook, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	if id == "" {
		id = DefaultPhonebookID
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	var data []byte
	var err error
	if c.session.Style == StyleDigestPerRequest {
		data, err = c.soapFetchPhonebook(ctx, id)
	} else {
		data, err = c.exportPhonebook(ctx, id, name)
	}
	if err != nil {
		return nil, err
	}

	book, err := phonebook.Parse(bytes.NewReader(data), c.DownloadURL)
	if err != nil {
		return nil, NewParseError("could not parse phonebook data (are you logged in?)", err)
	}

	logging.Info("Phonebook retrieved",
		zap.String("id", id),
		zap.Int("contacts", len(book)),
	)
	return book, nil
}

// exportPhonebook posts the firmwarecfg export form; the response body is
// the phonebook XML itself.
func (c *Client) exportPhonebook(ctx context.Context, id, name string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"sid", c.session.SID},
		{"PhonebookId", id},
		{"PhonebookExportName", name},
		{"PhonebookExport", ""},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(firmwareCfgPath), &buf)
	if err != nil {
		return nil, newTransportError("failed to create export request", c.creds.Host, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, newTransportError("phonebook export failed", c.creds.Host, err)
	}
	if resp.status != http.StatusOK {
		return nil, NewRequestError(resp.status, fmt.Sprintf("phonebook export returned status %d", resp.status))
	}
	return resp.body, nil
}
