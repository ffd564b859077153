package portdex

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// PortRegistry is the complete built index of all PortAssignments plus a
// reverse keyword index. It is created once per parse+build cycle and is
// immutable afterward.
type PortRegistry struct {
	assignments []*PortAssignment
	byPort      map[uint16][]int    // port -> assignment indices, first-seen order
	keywords    map[string][]int    // lower-cased token -> assignment indices
	tokens      []map[string]bool   // per-assignment token set
	tokenList   []string            // sorted unique tokens, for substring scans
	builtAt     time.Time
	fingerprint string
}

// Match is one keyword lookup result: a covered port paired with the
// assignment that matched.
type Match struct {
	Port       uint16          `json:"port"`
	Assignment *PortAssignment `json:"assignment"`
}

// BuildRegistry builds a registry from assignments in parse order. The build
// is deterministic: the same input sequence always produces the same
// iteration order on every accessor, which keeps cache round-trips stable.
// No assignment is merged or discarded; multiplicities are preserved and
// presentation order is left to the query methods.
func BuildRegistry(assignments []*PortAssignment, fingerprint string, builtAt time.Time) *PortRegistry {
	r := &PortRegistry{
		assignments: assignments,
		byPort:      make(map[uint16][]int),
		keywords:    make(map[string][]int),
		tokens:      make([]map[string]bool, len(assignments)),
		builtAt:     builtAt,
		fingerprint: fingerprint,
	}

	for i, a := range assignments {
		for port := int(a.Ports.Lo); port <= int(a.Ports.Hi); port++ {
			r.byPort[uint16(port)] = append(r.byPort[uint16(port)], i)
		}

		set := make(map[string]bool)
		for _, name := range a.ServiceNames {
			for _, tok := range Tokenize(name) {
				set[tok] = true
			}
		}
		for _, tok := range Tokenize(a.Description) {
			set[tok] = true
		}
		r.tokens[i] = set
		for tok := range set {
			r.keywords[tok] = append(r.keywords[tok], i)
		}
	}

	// Postings per token are ascending by construction. The sorted token
	// list gives substring scans a deterministic order.
	r.tokenList = make([]string, 0, len(r.keywords))
	for tok := range r.keywords {
		r.tokenList = append(r.tokenList, tok)
	}
	sort.Strings(r.tokenList)

	return r
}

// Assignments returns all assignments in parse order.
func (r *PortRegistry) Assignments() []*PortAssignment {
	return r.assignments
}

// Len returns the number of assignments in the registry.
func (r *PortRegistry) Len() int {
	return len(r.assignments)
}

// BuiltAt returns when the registry was built.
func (r *PortRegistry) BuiltAt() time.Time {
	return r.builtAt
}

// SourceFingerprint returns the content fingerprint of the document the
// registry was built from.
func (r *PortRegistry) SourceFingerprint() string {
	return r.fingerprint
}

// IsFresh reports whether the registry is young enough to skip re-fetching.
func (r *PortRegistry) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(r.builtAt) < maxAge
}

// ByPort returns every assignment whose range covers the port, in
// first-seen order. An empty result is a valid answer, not an error.
func (r *PortRegistry) ByPort(port uint16) []*PortAssignment {
	idxs := r.byPort[port]
	out := make([]*PortAssignment, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.assignments[i])
	}
	return out
}

// ByPortProtocol is ByPort narrowed to assignments that claim the protocol
// as used. ProtocolUnknown disables the narrowing.
func (r *PortRegistry) ByPortProtocol(port uint16, proto Protocol) []*PortAssignment {
	var out []*PortAssignment
	for _, a := range r.ByPort(port) {
		if a.Matches(port, proto) {
			out = append(out, a)
		}
	}
	return out
}

// ByKeyword returns keyword matches against the registry's token index.
// Exact full-token matches rank above substring matches; within each group
// results are ordered by ascending port number, then parse order.
func (r *PortRegistry) ByKeyword(term string) []Match {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return nil
	}

	type pair struct {
		port uint16
		idx  int
	}
	seen := make(map[pair]bool)

	collect := func(idxs []int) []pair {
		var ps []pair
		for _, i := range idxs {
			a := r.assignments[i]
			for port := int(a.Ports.Lo); port <= int(a.Ports.Hi); port++ {
				p := pair{port: uint16(port), idx: i}
				if seen[p] {
					continue
				}
				seen[p] = true
				ps = append(ps, p)
			}
		}
		sort.Slice(ps, func(x, y int) bool {
			if ps[x].port != ps[y].port {
				return ps[x].port < ps[y].port
			}
			return ps[x].idx < ps[y].idx
		})
		return ps
	}

	exact := collect(r.keywords[t])

	var subIdxs []int
	subSeen := make(map[int]bool)
	for _, tok := range r.tokenList {
		if tok == t || !strings.Contains(tok, t) {
			continue
		}
		for _, i := range r.keywords[tok] {
			if !subSeen[i] {
				subSeen[i] = true
				subIdxs = append(subIdxs, i)
			}
		}
	}
	sort.Ints(subIdxs)
	substring := collect(subIdxs)

	out := make([]Match, 0, len(exact)+len(substring))
	for _, p := range exact {
		out = append(out, Match{Port: p.port, Assignment: r.assignments[p.idx]})
	}
	for _, p := range substring {
		out = append(out, Match{Port: p.port, Assignment: r.assignments[p.idx]})
	}
	return out
}

// Tokenize splits text into lower-cased index tokens on any run of
// non-alphanumeric characters.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}
