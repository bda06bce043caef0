package phonebook

import "sort"

// Contact is one phonebook entry. Contacts are keyed by display name, so
// entries sharing a name on the box collapse into one Contact.
type Contact struct {
	Name         string   `json:"name"`
	Numbers      []string `json:"numbers"`
	ImageURL     string   `json:"imageURL,omitempty"`
	ImageHTTPURL string   `json:"imageHttpURL,omitempty"`
}

// Phonebook maps contact names to contacts
type Phonebook map[string]*Contact

// Names returns the contact names in sorted order
func (p Phonebook) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sorted returns the contacts ordered by name
func (p Phonebook) Sorted() []*Contact {
	contacts := make([]*Contact, 0, len(p))
	for _, name := range p.Names() {
		contacts = append(contacts, p[name])
	}
	return contacts
}

// NumberCount returns the total number of phone numbers
func (p Phonebook) NumberCount() int {
	n := 0
	for _, c := range p {
		n += len(c.Numbers)
	}
	return n
}
