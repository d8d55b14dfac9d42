package roster

import (
	"fmt"
	"strings"
)

// Pair is a named group of canvassers that share chunk assignments.
// A pair with no members is a placeholder that cannot be assigned work yet.
type Pair struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

// PairSpec is the requested configuration of one pair.
// An empty Name defaults to "Pair N".
type PairSpec struct {
	Name    string   `yaml:"name,omitempty"`
	Members []string `yaml:"members"`
}

// Pairing partitions part of a roster into disjoint pairs.
// A nil *Pairing is valid and means pairing is disabled.
type Pairing struct {
	pairs    []Pair
	byName   map[string]int
	memberOf map[string]string
}

// NewPairing builds count pairs from specs. Specs beyond the first count are
// rejected; pairs without a spec are created empty.
//
// Each member must be on the roster and may appear in at most one pair.
// Pair names must be unique, must not shadow a canvasser name and must not
// be ReservedName.
func NewPairing(r *Roster, count int, specs []PairSpec) (*Pairing, error) {
	if count < 0 {
		return nil, &RosterError{Reason: fmt.Sprintf("pair count must be >= 0, got %d", count)}
	}
	if len(specs) > count {
		return nil, &RosterError{Reason: fmt.Sprintf("%d pair(s) configured but pair count is %d", len(specs), count)}
	}

	p := &Pairing{
		pairs:    make([]Pair, 0, count),
		byName:   make(map[string]int, count),
		memberOf: make(map[string]string),
	}

	for i := 0; i < count; i++ {
		var spec PairSpec
		if i < len(specs) {
			spec = specs[i]
		}

		name := strings.TrimSpace(spec.Name)
		if name == "" {
			name = fmt.Sprintf("Pair %d", i+1)
		}
		if name == ReservedName {
			return nil, &RosterError{Reason: "name is reserved for unassigned chunks", Names: []string{name}}
		}
		if _, exists := p.byName[name]; exists {
			return nil, &RosterError{Reason: "duplicate pair name", Names: []string{name}}
		}
		if r.Has(name) {
			return nil, &RosterError{Reason: "pair name is also a canvasser name", Names: []string{name}}
		}

		members := make([]string, 0, len(spec.Members))
		for _, m := range spec.Members {
			m = strings.TrimSpace(m)
			if !r.Has(m) {
				return nil, &RosterError{Reason: fmt.Sprintf("pair %q references unknown canvasser", name), Names: []string{m}}
			}
			if owner, taken := p.memberOf[m]; taken {
				return nil, &RosterError{Reason: fmt.Sprintf("canvasser already belongs to pair %q", owner), Names: []string{m}}
			}
			p.memberOf[m] = name
			members = append(members, m)
		}

		p.byName[name] = len(p.pairs)
		p.pairs = append(p.pairs, Pair{Name: name, Members: members})
	}

	return p, nil
}

// Pairs returns the pairs in creation order, including empty ones.
func (p *Pairing) Pairs() []Pair {
	if p == nil {
		return nil
	}
	out := make([]Pair, len(p.pairs))
	for i, pair := range p.pairs {
		out[i] = Pair{Name: pair.Name, Members: append([]string(nil), pair.Members...)}
	}
	return out
}

// Lookup returns the pair called name.
func (p *Pairing) Lookup(name string) (Pair, bool) {
	if p == nil {
		return Pair{}, false
	}
	i, ok := p.byName[name]
	if !ok {
		return Pair{}, false
	}
	return p.pairs[i], true
}

// PairOf returns the name of the pair canvasser belongs to.
func (p *Pairing) PairOf(canvasser string) (string, bool) {
	if p == nil {
		return "", false
	}
	name, ok := p.memberOf[canvasser]
	return name, ok
}

// Unpaired returns roster names not placed in any pair, in roster order.
// These are still available for the next pair and are assignable on their own.
func (p *Pairing) Unpaired(r *Roster) []string {
	var out []string
	for _, name := range r.Names() {
		if _, paired := p.PairOf(name); !paired {
			out = append(out, name)
		}
	}
	return out
}
