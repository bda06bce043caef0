package phonebook

import (
	"fmt"
	"io"

	"github.com/emersion/go-vcard"
)

// Card converts a contact into a vCard 4.0 card
func (c *Contact) Card() vcard.Card {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldFormattedName, c.Name)
	card.SetName(&vcard.Name{GivenName: c.Name})
	for _, number := range c.Numbers {
		card.AddValue(vcard.FieldTelephone, number)
	}
	if c.ImageHTTPURL != "" {
		card.SetValue(vcard.FieldPhoto, c.ImageHTTPURL)
	}
	vcard.ToV4(card)
	return card
}

// WriteVCards writes every contact as a vCard, ordered by name
func (p Phonebook) WriteVCards(w io.Writer) error {
	enc := vcard.NewEncoder(w)
	for _, c := range p.Sorted() {
		if err := enc.Encode(c.Card()); err != nil {
			return fmt.Errorf("failed to encode vCard for %q: %w", c.Name, err)
		}
	}
	return nil
}
