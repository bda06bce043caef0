package box

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/fonbook/internal/logging"
)

func TestRedactSIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "session info",
			body: sessionInfo("0", testSID, testChallenge),
			want: sessionInfo("0", "REDACTED", testChallenge),
		},
		{
			name: "soap url",
			body: "<NewPhonebookURL>https://box/phonebook.lua?sid=1234abcd5678ef90&amp;pbid=1</NewPhonebookURL>",
			want: "<NewPhonebookURL>https://box/phonebook.lua?sid=REDACTED&amp;pbid=1</NewPhonebookURL>",
		},
		{
			name: "lower case element",
			body: "<sid>" + testSID + "</sid>",
			want: "<sid>REDACTED</sid>",
		},
		{
			name: "no session id",
			body: "<html>uiBookid:0 uiBookid:1</html>",
			want: "<html>uiBookid:0 uiBookid:1</html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(redactSIDs([]byte(tt.body))); got != tt.want {
				t.Errorf("redactSIDs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDebugLogOmitsSessionIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	_, server := newMockBox(t)
	client := loggedInClient(t, server)
	if _, err := client.ListPhonebooks(context.Background()); err != nil {
		t.Fatalf("ListPhonebooks() error = %v", err)
	}

	dumps := logs.FilterMessage("Response body").All()
	if len(dumps) == 0 {
		t.Fatal("no response bodies were logged at debug level")
	}
	for _, entry := range logs.All() {
		for key, value := range entry.ContextMap() {
			if strings.Contains(fmt.Sprint(value), testSID) {
				t.Errorf("%q field %s leaks the session id: %v", entry.Message, key, value)
			}
		}
	}
}
