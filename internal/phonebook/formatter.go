package phonebook

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the phonebook
func (p Phonebook) Summary() string {
	return fmt.Sprintf("%d contacts, %d numbers", len(p), p.NumberCount())
}

// FormatCompact returns one line per contact: name followed by its numbers
func (p Phonebook) FormatCompact() string {
	var b strings.Builder
	for _, c := range p.Sorted() {
		b.WriteString(c.Name)
		if len(c.Numbers) > 0 {
			b.WriteString(": ")
			b.WriteString(strings.Join(c.Numbers, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatContact returns a multi-line description of one contact
func (c *Contact) FormatContact() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== %s ===\n", c.Name))
	if len(c.Numbers) == 0 {
		b.WriteString("Numbers: (none)\n")
	}
	for i, number := range c.Numbers {
		b.WriteString(fmt.Sprintf("Number %d:  %s\n", i+1, number))
	}
	if c.ImageURL != "" {
		b.WriteString(fmt.Sprintf("Image:     %s\n", c.ImageURL))
		if c.ImageHTTPURL != c.ImageURL {
			b.WriteString(fmt.Sprintf("Download:  %s\n", c.ImageHTTPURL))
		}
	}

	return b.String()
}

// FormatDetailed returns every contact with all of its details
func (p Phonebook) FormatDetailed() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Phonebook: %s\n\n", p.Summary()))
	for _, c := range p.Sorted() {
		b.WriteString(c.FormatContact())
		b.WriteString("\n")
	}

	return b.String()
}
