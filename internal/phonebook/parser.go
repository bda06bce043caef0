package phonebook

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element names the parser reacts to
const (
	elemContact  = "contact"
	elemRealName = "realName"
	elemNumber   = "number"
	elemImageURL = "imageURL"

	elemPhonebooks = "phonebooks"
	elemPhonebook  = "phonebook"
)

// ParseError reports malformed phonebook XML. Boxes answer requests made
// with an invalid session with an HTML page, which is the usual cause.
type ParseError struct {
	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse phonebook data (is the session valid?): %v", e.Err)
}

// Unwrap returns the underlying XML error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// RewriteFunc turns a stored image reference into a fetchable URL
type RewriteFunc func(raw string) string

// parseState is the cursor of a streaming parse. Its methods are the
// transitions for element start, character data and element end.
type parseState struct {
	book    Phonebook
	current string // name of the contact being read; "" outside a known contact
	key     string // innermost open element; "" after it closed
	text    strings.Builder
	rewrite RewriteFunc
}

func newParseState(rewrite RewriteFunc) *parseState {
	if rewrite == nil {
		rewrite = func(raw string) string { return raw }
	}
	return &parseState{book: make(Phonebook), rewrite: rewrite}
}

func (s *parseState) start(name string) {
	if name == elemContact {
		s.current = ""
	}
	s.key = name
	s.text.Reset()
}

func (s *parseState) chars(data []byte) {
	if s.key != "" {
		s.text.Write(data)
	}
}

func (s *parseState) end() {
	if s.key != "" && s.text.Len() > 0 {
		s.apply(s.key, s.text.String())
	}
	s.key = ""
	s.text.Reset()
}

// apply handles the complete text of one element.
func (s *parseState) apply(key, content string) {
	switch key {
	case elemRealName:
		s.current = content
		if _, ok := s.book[content]; !ok {
			s.book[content] = &Contact{Name: content, Numbers: []string{}}
		}
	case elemNumber:
		if c, ok := s.book[s.current]; ok && s.current != "" {
			c.Numbers = append(c.Numbers, content)
		}
	case elemImageURL:
		if c, ok := s.book[s.current]; ok && s.current != "" {
			c.ImageURL = content
			c.ImageHTTPURL = s.rewrite(content)
		}
	}
}

// Parse streams a box phonebook export and collects its contacts.
//
// The root element must be phonebooks or phonebook. Numbers keep document
// order. Numbers and images outside a contact with a known name are ignored. rewrite computes ImageHTTPURL from ImageURL and
// may be nil.
func Parse(r io.Reader, rewrite RewriteFunc) (Phonebook, error) {
	state := newParseState(rewrite)
	dec := xml.NewDecoder(r)
	// exports declare iso-8859-1 on older firmware
	dec.CharsetReader = charsetReader

	sawElement := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !sawElement && t.Name.Local != elemPhonebooks && t.Name.Local != elemPhonebook {
				// well-formed HTML error pages end up here
				return nil, &ParseError{Err: fmt.Errorf("unexpected root element <%s>", t.Name.Local)}
			}
			sawElement = true
			state.start(t.Name.Local)
		case xml.CharData:
			state.chars(t)
		case xml.EndElement:
			state.end()
		}
	}

	if !sawElement {
		return nil, &ParseError{Err: errors.New("document contains no elements")}
	}
	return state.book, nil
}
