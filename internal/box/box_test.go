package box

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const (
	testChallenge = "1234567z"
	testPassword  = "äbc"
	testSID       = "abcdef0123456789"
	zeroSID       = "0000000000000000"
)

const mockPhonebookXML = `<?xml version="1.0" encoding="utf-8"?>
<phonebooks><phonebook name="Telefonbuch">
<contact><category>0</category>
  <person><realName>Alice</realName><imageURL>file:///var/media/ftp/FRITZ/fonpix/alice.jpg</imageURL></person>
  <telephony><number type="home" prio="1">0301234567</number><number type="mobile">01701234567</number></telephony>
</contact>
<contact>
  <person><realName>Bob</realName></person>
  <telephony><number type="work">0897654321</number><number type="fax_work">0897654322</number></telephony>
</contact>
</phonebook></phonebooks>`

func sessionInfo(writeAccess, sid, challenge string) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<SessionInfo>")
	if writeAccess != "" {
		b.WriteString("<iswriteaccess>" + writeAccess + "</iswriteaccess>")
	}
	b.WriteString("<SID>" + sid + "</SID>")
	if challenge != "" {
		b.WriteString("<Challenge>" + challenge + "</Challenge>")
	}
	b.WriteString("</SessionInfo>")
	return b.String()
}

// expectedResponse computes the challenge answer for ASCII and Latin-1
// input without going through x/text.
func expectedResponse(challenge, password string) string {
	var buf []byte
	for _, r := range challenge + "-" + password {
		buf = append(buf, byte(r), byte(r>>8))
	}
	sum := md5.Sum(buf)
	return challenge + "-" + hex.EncodeToString(sum[:])
}

// mockBox emulates the webcm endpoints of a challenge-style box
type mockBox struct {
	t           *testing.T
	writeAccess string
	loginSID    string
	books       string
	phonebook   string

	exports []map[string]string
}

func (m *mockBox) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/cgi-bin/webcm", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			m.t.Errorf("ParseForm() error = %v", err)
		}
		if answer := r.PostFormValue("login:command/response"); answer != "" {
			if answer != expectedResponse(testChallenge, testPassword) {
				_, _ = io.WriteString(w, sessionInfo(m.writeAccess, zeroSID, testChallenge))
				return
			}
			_, _ = io.WriteString(w, sessionInfo("0", m.loginSID, testChallenge))
			return
		}
		_, _ = io.WriteString(w, sessionInfo(m.writeAccess, zeroSID, testChallenge))
	})

	mux.HandleFunc("/fon_num/fonbook_select.lua", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sid"); got != m.loginSID {
			m.t.Errorf("phonebook list sid = %q, want %q", got, m.loginSID)
		}
		_, _ = io.WriteString(w, m.books)
	})

	mux.HandleFunc("/cgi-bin/firmwarecfg", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			m.t.Errorf("ParseMultipartForm() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fields := make(map[string]string)
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		m.exports = append(m.exports, fields)
		_, _ = io.WriteString(w, m.phonebook)
	})

	return mux
}

// newMockBox starts a challenge-style box that accepts testPassword
func newMockBox(t *testing.T) (*mockBox, *httptest.Server) {
	t.Helper()
	m := &mockBox{
		t:           t,
		writeAccess: "1",
		loginSID:    testSID,
		books:       `<script>var books = [{uiBookid:12}, {uiBookid:7}, {uiBookid:12}];</script>`,
		phonebook:   mockPhonebookXML,
	}
	server := httptest.NewServer(m.handler())
	t.Cleanup(server.Close)
	return m, server
}

func hostOf(server *httptest.Server) string {
	return strings.TrimPrefix(strings.TrimPrefix(server.URL, "http://"), "https://")
}

func newTestClient(server *httptest.Server, password string) *Client {
	return NewClient(Credentials{Host: hostOf(server), Password: password}, DefaultConfig())
}
