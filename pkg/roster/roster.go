// Package roster holds the canvassers available for a route plan and the
// optional grouping of those canvassers into pairs.
package roster

import (
	"fmt"
	"strings"
)

// ReservedName is the selection meaning "nobody yet". No canvasser or pair
// may use it.
const ReservedName = "Unassigned"

// Canvasser is one assignable person.
type Canvasser struct {
	Name    string `json:"name" yaml:"name"`
	Contact string `json:"contact" yaml:"email"` // Email or equivalent, may be empty
}

// Roster is a validated set of canvassers keyed by name, in entry order.
type Roster struct {
	canvassers []Canvasser
	index      map[string]int
}

// New builds a roster from canvassers. Names and contacts are trimmed.
// Returns a RosterError on empty, reserved or duplicate names.
func New(canvassers []Canvasser) (*Roster, error) {
	r := &Roster{
		canvassers: make([]Canvasser, 0, len(canvassers)),
		index:      make(map[string]int, len(canvassers)),
	}

	var duplicates []string
	for i, c := range canvassers {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, &RosterError{Reason: fmt.Sprintf("canvasser at position %d has no name", i+1)}
		}
		if name == ReservedName {
			return nil, &RosterError{Reason: "name is reserved for unassigned chunks", Names: []string{name}}
		}
		if _, exists := r.index[name]; exists {
			duplicates = append(duplicates, name)
			continue
		}
		r.index[name] = len(r.canvassers)
		r.canvassers = append(r.canvassers, Canvasser{Name: name, Contact: strings.TrimSpace(c.Contact)})
	}

	if len(duplicates) > 0 {
		return nil, &RosterError{Reason: "duplicate canvasser names", Names: duplicates}
	}

	return r, nil
}

// FromLists builds a roster from parallel comma-separated name and contact
// lists, as typed into a form. Both lists must have the same number of entries.
func FromLists(names, contacts string) (*Roster, error) {
	nameList := splitList(names)
	contactList := splitList(contacts)

	if len(nameList) != len(contactList) {
		return nil, &RosterError{
			Reason: fmt.Sprintf("got %d name(s) but %d email(s)", len(nameList), len(contactList)),
		}
	}

	canvassers := make([]Canvasser, len(nameList))
	for i := range nameList {
		canvassers[i] = Canvasser{Name: nameList[i], Contact: contactList[i]}
	}

	return New(canvassers)
}

// Numbered builds a roster of n anonymous canvassers named "Canvasser 1"
// to "Canvasser n", with no contacts.
func Numbered(n int) (*Roster, error) {
	if n < 0 {
		return nil, &RosterError{Reason: fmt.Sprintf("canvasser count must be >= 0, got %d", n)}
	}
	canvassers := make([]Canvasser, n)
	for i := range canvassers {
		canvassers[i] = Canvasser{Name: fmt.Sprintf("Canvasser %d", i+1)}
	}
	return New(canvassers)
}

// splitList splits a comma-separated list, trimming entries.
// An empty or all-blank input is an empty list.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Len returns the number of canvassers.
func (r *Roster) Len() int {
	return len(r.canvassers)
}

// Canvassers returns a copy of the roster in entry order.
func (r *Roster) Canvassers() []Canvasser {
	out := make([]Canvasser, len(r.canvassers))
	copy(out, r.canvassers)
	return out
}

// Names returns canvasser names in entry order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.canvassers))
	for i, c := range r.canvassers {
		names[i] = c.Name
	}
	return names
}

// Has reports whether name is on the roster.
func (r *Roster) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Contact returns the contact for name, or "" if name is not on the roster.
func (r *Roster) Contact(name string) string {
	i, ok := r.index[name]
	if !ok {
		return ""
	}
	return r.canvassers[i].Contact
}
