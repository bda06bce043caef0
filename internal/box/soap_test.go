package box

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/icholy/digest"
)

const (
	digestUser     = "admin"
	digestPassword = "secret"
	digestRealm    = "HTTPS Access"
	digestNonce    = "0A1B2C3D4E5F"
	soapSID        = "1234abcd5678ef90"
)

var digestChallenge = &digest.Challenge{
	Realm:     digestRealm,
	Nonce:     digestNonce,
	Algorithm: "MD5",
	QOP:       []string{"auth"},
}

// mockTR064 emulates the OnTel service behind digest authentication
type mockTR064 struct {
	t          *testing.T
	host       string
	list       string
	actions    []string
	challenges int // 401 answers sent
}

// authorized recomputes the digest response the way the box does
func (m *mockTR064) authorized(r *http.Request) bool {
	cred, err := digest.ParseCredentials(r.Header.Get("Authorization"))
	if err != nil || cred.Username != digestUser || cred.Realm != digestRealm || cred.Nonce != digestNonce {
		return false
	}
	want, err := digest.Digest(digestChallenge, digest.Options{
		Method:   r.Method,
		URI:      cred.URI,
		Count:    cred.Nc,
		Cnonce:   cred.Cnonce,
		Username: digestUser,
		Password: digestPassword,
	})
	if err != nil {
		m.t.Errorf("digest.Digest() error = %v", err)
		return false
	}
	return cred.URI == r.URL.RequestURI() && cred.Response == want.Response
}

func (m *mockTR064) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(r) {
		m.challenges++
		w.Header().Set("WWW-Authenticate", digestChallenge.String())
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.URL.Path {
	case onTelControlPath:
		action := r.Header.Get("SOAPACTION")
		m.actions = append(m.actions, action)
		body, _ := io.ReadAll(r.Body)

		switch action {
		case onTelService + "#" + actionGetPhonebookList:
			fmt.Fprintf(w, `<s:Envelope><s:Body><u:GetPhonebookListResponse><NewPhonebookList>%s</NewPhonebookList></u:GetPhonebookListResponse></s:Body></s:Envelope>`, m.list)
		case onTelService + "#" + actionGetPhonebook:
			if !strings.Contains(string(body), "<NewPhonebookID>1</NewPhonebookID>") {
				m.t.Errorf("GetPhonebook body = %s", body)
			}
			fmt.Fprintf(w, `<s:Envelope><s:Body><u:GetPhonebookResponse><NewPhonebookName>Telefonbuch</NewPhonebookName><NewPhonebookURL>https://%s/phonebook.lua?sid=%s&amp;pbid=1</NewPhonebookURL></u:GetPhonebookResponse></s:Body></s:Envelope>`, m.host, soapSID)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	case "/phonebook.lua":
		if r.URL.Query().Get("sid") != soapSID || r.URL.Query().Get("pbid") != "1" {
			m.t.Errorf("download query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, mockPhonebookXML)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newDigestClient(t *testing.T, password string) (*mockTR064, *Client) {
	t.Helper()
	m := &mockTR064{t: t, list: "0,1,1"}
	server := httptest.NewTLSServer(m)
	t.Cleanup(server.Close)
	m.host = hostOf(server)

	config := DefaultConfig()
	config.Digest = true
	client := NewClient(Credentials{Host: m.host, Username: digestUser, Password: password}, config)
	return m, client
}

func TestDigest_ListPhonebooks(t *testing.T) {
	m, client := newDigestClient(t, digestPassword)

	if ok, err := client.Login(context.Background()); err != nil || !ok {
		t.Fatalf("Login() = %v, %v; want true, nil", ok, err)
	}

	ids, err := client.ListPhonebooks(context.Background())
	if err != nil {
		t.Fatalf("ListPhonebooks() error = %v", err)
	}
	if want := []string{"0", "1"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ListPhonebooks() = %v, want %v", ids, want)
	}
	if len(m.actions) != 1 {
		t.Errorf("SOAP actions = %v, want one call", m.actions)
	}
}

func TestDigest_GetPhonebook(t *testing.T) {
	m, client := newDigestClient(t, digestPassword)

	book, err := client.GetPhonebook(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetPhonebook() error = %v", err)
	}
	if len(book) != 2 {
		t.Errorf("contacts = %d, want 2", len(book))
	}
	if client.SID() != soapSID {
		t.Errorf("SID() = %q, want %q", client.SID(), soapSID)
	}

	want := "https://" + m.host + "/var/media/ftp/FRITZ/fonpix/alice.jpg?sid=" + soapSID
	if got := book["Alice"].ImageHTTPURL; got != want {
		t.Errorf("ImageHTTPURL = %q, want %q", got, want)
	}
}

func TestDigest_WrongPassword(t *testing.T) {
	_, client := newDigestClient(t, "wrong")

	_, err := client.ListPhonebooks(context.Background())
	if !IsLoginFailed(err) {
		t.Errorf("ListPhonebooks() error = %v, want login failed", err)
	}
}

func TestDigest_MissingSID(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<NewPhonebookURL>https://example.invalid/phonebook.lua?pbid=0</NewPhonebookURL>`)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.Digest = true
	client := NewClient(Credentials{Host: hostOf(server), Password: "pw"}, config)

	_, err := client.GetPhonebook(context.Background(), "0")
	if !IsLoginFailed(err) {
		t.Errorf("GetPhonebook() error = %v, want login failed", err)
	}
}

func TestDigest_ChallengeRoundTrip(t *testing.T) {
	m, client := newDigestClient(t, "wrong")

	if _, err := client.ListPhonebooks(context.Background()); !IsLoginFailed(err) {
		t.Fatalf("ListPhonebooks() error = %v, want login failed", err)
	}
	if m.challenges != 2 {
		t.Errorf("challenges = %d, want 2 (unauthenticated request and rejected answer)", m.challenges)
	}

	// the cached challenge is answered with the new password straight away
	client.SetPassword(digestPassword)
	for i := 0; i < 2; i++ {
		ids, err := client.ListPhonebooks(context.Background())
		if err != nil {
			t.Fatalf("ListPhonebooks() #%d error = %v", i+1, err)
		}
		if want := []string{"0", "1"}; !reflect.DeepEqual(ids, want) {
			t.Errorf("ListPhonebooks() = %v, want %v", ids, want)
		}
	}
	if m.challenges != 2 {
		t.Errorf("challenges = %d after authorized calls, want still 2", m.challenges)
	}
	if len(m.actions) != 2 {
		t.Errorf("SOAP actions = %v, want two calls", m.actions)
	}
}

func TestSOAPHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"fritz.box", "fritz.box:49443"},
		{"192.168.178.1", "192.168.178.1:49443"},
		{"127.0.0.1:8443", "127.0.0.1:8443"},
		{"[fe80::1]", "[fe80::1]:49443"},
	}

	for _, tt := range tests {
		client := NewClient(Credentials{Host: tt.host}, DefaultConfig())
		if got := client.soapHost(); got != tt.want {
			t.Errorf("soapHost(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
