package portdex

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol identifies a transport protocol named by the source document.
// ProtocolUnknown is a first-class value: an unparseable protocol cell
// degrades to it instead of dropping the row.
type Protocol int

// Known protocols.
const (
	ProtocolUnknown Protocol = iota
	ProtocolTCP
	ProtocolUDP
	ProtocolSCTP
	ProtocolDCCP
)

var protocolNames = map[Protocol]string{
	ProtocolUnknown: "unknown",
	ProtocolTCP:     "tcp",
	ProtocolUDP:     "udp",
	ProtocolSCTP:    "sctp",
	ProtocolDCCP:    "dccp",
}

// String returns the lower-case protocol name.
func (p Protocol) String() string {
	if s, ok := protocolNames[p]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so protocols serialize as
// stable names rather than integers.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Protocol) UnmarshalText(text []byte) error {
	parsed, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProtocol maps a protocol token to its enum value. Matching is
// case-insensitive and tolerant of surrounding punctuation. Unknown tokens
// return an EINVALID error so callers can degrade to ProtocolUnknown.
func ParseProtocol(s string) (Protocol, error) {
	token := strings.ToLower(strings.Trim(strings.TrimSpace(s), ".,;:()[]"))
	switch token {
	case "tcp":
		return ProtocolTCP, nil
	case "udp":
		return ProtocolUDP, nil
	case "sctp":
		return ProtocolSCTP, nil
	case "dccp":
		return ProtocolDCCP, nil
	case "unknown":
		return ProtocolUnknown, nil
	}
	return ProtocolUnknown, Errorf(EINVALID, "unknown protocol: %q", s)
}

// Claim is what a row asserts about one protocol on its port: used,
// explicitly not used, or unknown/unassigned.
type Claim int

// Claim values.
const (
	ClaimUnknown Claim = iota
	ClaimUsed
	ClaimNotUsed
)

var claimNames = map[Claim]string{
	ClaimUnknown: "unknown",
	ClaimUsed:    "used",
	ClaimNotUsed: "not_used",
}

// String returns the claim name.
func (c Claim) String() string {
	if s, ok := claimNames[c]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Claim) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Claim) UnmarshalText(text []byte) error {
	for k, v := range claimNames {
		if v == string(text) {
			*c = k
			return nil
		}
	}
	return Errorf(EINVALID, "unknown claim: %q", string(text))
}

// ProtocolClaim pairs a protocol with the row's claim about it.
type ProtocolClaim struct {
	Protocol Protocol `json:"protocol"`
	Claim    Claim    `json:"claim"`
}

// Status reflects how authoritatively the source document marks a row.
type Status int

// Status values.
const (
	StatusUnknown Status = iota
	StatusOfficial
	StatusUnofficial
	StatusAssigned
	StatusConflicting
)

var statusNames = map[Status]string{
	StatusUnknown:     "unknown",
	StatusOfficial:    "official",
	StatusUnofficial:  "unofficial",
	StatusAssigned:    "assigned",
	StatusConflicting: "conflicting",
}

// String returns the status name.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for k, v := range statusNames {
		if v == string(text) {
			*s = k
			return nil
		}
	}
	return Errorf(EINVALID, "unknown status: %q", string(text))
}

// Category classifies a port number per IANA convention.
type Category int

// Port categories.
const (
	CategoryWellKnown  Category = iota // 0-1023
	CategoryRegistered                 // 1024-49151
	CategoryDynamic                    // 49152-65535
)

// CategoryOf returns the category a port number falls into.
func CategoryOf(port uint16) Category {
	switch {
	case port <= 1023:
		return CategoryWellKnown
	case port <= 49151:
		return CategoryRegistered
	default:
		return CategoryDynamic
	}
}

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryWellKnown:
		return "well-known"
	case CategoryRegistered:
		return "registered"
	default:
		return "dynamic"
	}
}

// PortRange is an inclusive range of port numbers. A single port is a range
// with Lo == Hi.
type PortRange struct {
	Lo uint16 `json:"lo"`
	Hi uint16 `json:"hi"`
}

// SinglePort returns a range covering exactly one port.
func SinglePort(n uint16) PortRange {
	return PortRange{Lo: n, Hi: n}
}

// Contains reports whether n falls within the range.
func (r PortRange) Contains(n uint16) bool {
	return r.Lo <= n && n <= r.Hi
}

// Validate returns an error if the range is inverted.
func (r PortRange) Validate() error {
	if r.Lo > r.Hi {
		return Errorf(EINVALID, "port range lower bound %d exceeds upper bound %d", r.Lo, r.Hi)
	}
	return nil
}

// String renders the range as "80" or "6881-6887".
func (r PortRange) String() string {
	if r.Lo == r.Hi {
		return strconv.Itoa(int(r.Lo))
	}
	return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
}

// Link is a hyperlink captured from a row's description cell.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// PortAssignment records one usage of a port or port range as extracted
// from a single source row.
type PortAssignment struct {
	Ports        PortRange       `json:"ports"`
	Protocols    []ProtocolClaim `json:"protocols"`
	ServiceNames []string        `json:"serviceNames"`
	Description  string          `json:"description"`
	Status       Status          `json:"status"`
	SourceRefs   []string        `json:"sourceRefs,omitempty"`
	Links        []Link          `json:"links,omitempty"`
}

// Validate returns an error if the assignment violates its invariants.
func (a *PortAssignment) Validate() error {
	if err := a.Ports.Validate(); err != nil {
		return err
	}
	if len(a.Protocols) == 0 {
		return Errorf(EINVALID, "assignment protocols required")
	}
	if len(a.ServiceNames) == 0 {
		return Errorf(EINVALID, "assignment service names required")
	}
	return nil
}

// ClaimFor returns the assignment's claim for the given protocol.
// Protocols the row says nothing about report ClaimUnknown.
func (a *PortAssignment) ClaimFor(p Protocol) Claim {
	for _, pc := range a.Protocols {
		if pc.Protocol == p {
			return pc.Claim
		}
	}
	return ClaimUnknown
}

// Matches reports whether the assignment covers the port and, when proto is
// not ProtocolUnknown, asserts that protocol as used.
func (a *PortAssignment) Matches(port uint16, proto Protocol) bool {
	if !a.Ports.Contains(port) {
		return false
	}
	if proto == ProtocolUnknown {
		return true
	}
	return a.ClaimFor(proto) == ClaimUsed
}
