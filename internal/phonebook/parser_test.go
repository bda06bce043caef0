package phonebook

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const twoContacts = `<?xml version="1.0" encoding="utf-8"?>
<phonebooks>
<phonebook name="Telefonbuch">
<contact>
  <category>0</category>
  <person>
    <realName>Alice</realName>
    <imageURL>file:///var/media/ftp/FRITZ/fonpix/alice.jpg</imageURL>
  </person>
  <telephony nid="2">
    <number type="home" prio="1" id="0">0301234567</number>
    <number type="mobile" prio="0" id="1">01701234567</number>
  </telephony>
  <services />
  <setup />
  <uniqueid>1</uniqueid>
</contact>
<contact>
  <category>0</category>
  <person>
    <realName>Bob</realName>
  </person>
  <telephony nid="2">
    <number type="work" id="0">0897654321</number>
    <number type="fax_work" id="1">0897654322</number>
  </telephony>
</contact>
</phonebook>
</phonebooks>`

func TestParse(t *testing.T) {
	book, err := Parse(strings.NewReader(twoContacts), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(book) != 2 {
		t.Fatalf("len(book) = %d, want 2", len(book))
	}

	tests := []struct {
		name    string
		numbers []string
		image   string
	}{
		{"Alice", []string{"0301234567", "01701234567"}, "file:///var/media/ftp/FRITZ/fonpix/alice.jpg"},
		{"Bob", []string{"0897654321", "0897654322"}, ""},
	}

	for _, tt := range tests {
		c, ok := book[tt.name]
		if !ok {
			t.Errorf("contact %q missing", tt.name)
			continue
		}
		if c.Name != tt.name {
			t.Errorf("Name = %q, want %q", c.Name, tt.name)
		}
		if !reflect.DeepEqual(c.Numbers, tt.numbers) {
			t.Errorf("%s numbers = %v, want %v", tt.name, c.Numbers, tt.numbers)
		}
		if c.ImageURL != tt.image {
			t.Errorf("%s ImageURL = %q, want %q", tt.name, c.ImageURL, tt.image)
		}
		if c.ImageHTTPURL != tt.image {
			t.Errorf("%s ImageHTTPURL = %q, want %q without rewrite", tt.name, c.ImageHTTPURL, tt.image)
		}
	}
}

func TestParse_Rewrite(t *testing.T) {
	var seen []string
	rewrite := func(raw string) string {
		seen = append(seen, raw)
		return "http://fritz.box/download?file=" + strings.TrimPrefix(raw, "file:///var/media/ftp/")
	}

	book, err := Parse(strings.NewReader(twoContacts), rewrite)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	alice := book["Alice"]
	if alice.ImageURL != "file:///var/media/ftp/FRITZ/fonpix/alice.jpg" {
		t.Errorf("ImageURL = %q, should keep the stored reference", alice.ImageURL)
	}
	if want := "http://fritz.box/download?file=FRITZ/fonpix/alice.jpg"; alice.ImageHTTPURL != want {
		t.Errorf("ImageHTTPURL = %q, want %q", alice.ImageHTTPURL, want)
	}
	if len(seen) != 1 {
		t.Errorf("rewrite called %d times, want 1", len(seen))
	}
	if book["Bob"].ImageHTTPURL != "" {
		t.Errorf("Bob ImageHTTPURL = %q, want empty", book["Bob"].ImageHTTPURL)
	}
}

func TestParse_SharedNameMerges(t *testing.T) {
	doc := `<phonebook>
<contact><person><realName>Carol</realName></person><telephony><number>1</number></telephony></contact>
<contact><person><realName>Carol</realName></person><telephony><number>2</number></telephony></contact>
</phonebook>`

	book, err := Parse(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(book) != 1 {
		t.Fatalf("len(book) = %d, want 1", len(book))
	}
	if want := []string{"1", "2"}; !reflect.DeepEqual(book["Carol"].Numbers, want) {
		t.Errorf("numbers = %v, want %v", book["Carol"].Numbers, want)
	}
}

func TestParse_OrphanNumbersIgnored(t *testing.T) {
	doc := `<phonebook>
<contact><telephony><number>111</number></telephony></contact>
<number>222</number>
<contact><person><realName>Dave</realName></person><telephony><number>333</number></telephony></contact>
</phonebook>`

	book, err := Parse(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(book) != 1 {
		t.Fatalf("len(book) = %d, want 1", len(book))
	}
	if want := []string{"333"}; !reflect.DeepEqual(book["Dave"].Numbers, want) {
		t.Errorf("numbers = %v, want %v", book["Dave"].Numbers, want)
	}
}

func TestParse_Entities(t *testing.T) {
	doc := `<phonebook><contact><person><realName>Müller &amp; Söhne</realName></person>` +
		`<telephony><number>+49 (30) 123</number></telephony></contact></phonebook>`

	book, err := Parse(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	c, ok := book["Müller & Söhne"]
	if !ok {
		t.Fatalf("contact missing, got %v", book.Names())
	}
	if want := []string{"+49 (30) 123"}; !reflect.DeepEqual(c.Numbers, want) {
		t.Errorf("numbers = %v, want %v", c.Numbers, want)
	}
}

func TestParse_Latin1(t *testing.T) {
	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="ISO-8859-1"?><phonebook><contact><person><realName>J`)
	doc.WriteByte(0xfc) // ü
	doc.WriteString(`rgen</realName></person><telephony><number>42</number></telephony></contact></phonebook>`)

	book, err := Parse(&doc, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := book["Jürgen"]; !ok {
		t.Errorf("contact Jürgen missing, got %v", book.Names())
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"html login page", `<!DOCTYPE html><html><head><meta charset="utf-8"></head><body>Anmeldung&nbsp;erforderlich</body></html>`},
		{"truncated", `<phonebook><contact><person><realName>Eve</realName>`},
		{"empty", ``},
		{"plain text", `not xml at all`},
		{"well-formed html", `<html><head><title>FRITZ!Box</title></head><body><p>Sitzung ungueltig</p></body></html>`},
		{"foreign root", `<SessionInfo><SID>0000000000000000</SID></SessionInfo>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := Parse(strings.NewReader(tt.doc), nil)
			if err == nil {
				t.Fatalf("Parse() = %v, want error", book)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Parse() error = %T, want *ParseError", err)
			}
		})
	}
}

func TestParse_EmptyPhonebook(t *testing.T) {
	book, err := Parse(strings.NewReader(`<phonebooks><phonebook name="Leer"></phonebook></phonebooks>`), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(book) != 0 {
		t.Errorf("len(book) = %d, want 0", len(book))
	}
}
