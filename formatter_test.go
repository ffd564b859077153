package portdex_test

import (
	"testing"

	"github.com/portdex/portdex"
	"github.com/stretchr/testify/assert"
)

func TestFormatAssignment(t *testing.T) {
	t.Parallel()

	a := &portdex.PortAssignment{
		Ports: portdex.SinglePort(80),
		Protocols: []portdex.ProtocolClaim{
			{Protocol: portdex.ProtocolTCP, Claim: portdex.ClaimUsed},
			{Protocol: portdex.ProtocolUDP, Claim: portdex.ClaimNotUsed},
		},
		ServiceNames: []string{"http"},
		Description:  "Hypertext Transfer Protocol",
		Status:       portdex.StatusOfficial,
		SourceRefs:   []string{"[11]"},
		Links:        []portdex.Link{{Text: "HTTP", URL: "https://en.wikipedia.org/wiki/HTTP"}},
	}

	t.Run("default output has description, protocols, and status", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatAssignment(a, portdex.FormatOptions{})
		assert.Equal(t,
			"Hypertext Transfer Protocol\nprotocols: tcp (used), udp (not_used)\nstatus: official",
			got)
	})

	t.Run("links section is opt-in", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatAssignment(a, portdex.FormatOptions{ShowLinks: true})
		assert.Contains(t, got, "links:\n  HTTP: https://en.wikipedia.org/wiki/HTTP")

		got = portdex.FormatAssignment(a, portdex.FormatOptions{})
		assert.NotContains(t, got, "links:")
	})

	t.Run("references section is opt-in", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatAssignment(a, portdex.FormatOptions{ShowRefs: true})
		assert.Contains(t, got, "references:\n  [11]")

		got = portdex.FormatAssignment(a, portdex.FormatOptions{})
		assert.NotContains(t, got, "references:")
	})

	t.Run("falls back to service names without a description", func(t *testing.T) {
		t.Parallel()

		b := *a
		b.Description = ""
		got := portdex.FormatAssignment(&b, portdex.FormatOptions{})
		assert.Contains(t, got, "http")
	})

	t.Run("unknown claims on named protocols are omitted", func(t *testing.T) {
		t.Parallel()

		b := *a
		b.Protocols = []portdex.ProtocolClaim{
			{Protocol: portdex.ProtocolTCP, Claim: portdex.ClaimUsed},
			{Protocol: portdex.ProtocolSCTP, Claim: portdex.ClaimUnknown},
		}
		got := portdex.FormatAssignment(&b, portdex.FormatOptions{})
		assert.Contains(t, got, "tcp (used)")
		assert.NotContains(t, got, "sctp")
	})
}

func TestFormatPortLookup(t *testing.T) {
	t.Parallel()

	a := &portdex.PortAssignment{
		Ports:        portdex.SinglePort(80),
		Protocols:    []portdex.ProtocolClaim{{Protocol: portdex.ProtocolTCP, Claim: portdex.ClaimUsed}},
		ServiceNames: []string{"http"},
		Description:  "Hypertext Transfer Protocol",
		Status:       portdex.StatusOfficial,
	}

	t.Run("headline names the port, category, and count", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatPortLookup(80, portdex.ProtocolUnknown, []*portdex.PortAssignment{a, a}, portdex.FormatOptions{})
		assert.Contains(t, got, "Port 80 is a well-known port with 2 known use cases")
		assert.Contains(t, got, "1: Hypertext Transfer Protocol")
		assert.Contains(t, got, "2: Hypertext Transfer Protocol")
	})

	t.Run("singular form for one use case", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatPortLookup(80, portdex.ProtocolUnknown, []*portdex.PortAssignment{a}, portdex.FormatOptions{})
		assert.Contains(t, got, "1 known use case")
		assert.NotContains(t, got, "use cases")
	})

	t.Run("protocol-qualified lookups carry the protocol in the headline", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatPortLookup(443, portdex.ProtocolUDP, []*portdex.PortAssignment{a}, portdex.FormatOptions{})
		assert.Contains(t, got, "Port 443/udp")
	})

	t.Run("empty result is reported, not an error", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatPortLookup(50000, portdex.ProtocolUnknown, nil, portdex.FormatOptions{})
		assert.Equal(t, "Port 50000 is a dynamic port with no known use cases", got)
	})
}

func TestFormatKeywordLookup(t *testing.T) {
	t.Parallel()

	a := &portdex.PortAssignment{
		Ports:        portdex.SinglePort(22),
		Protocols:    []portdex.ProtocolClaim{{Protocol: portdex.ProtocolTCP, Claim: portdex.ClaimUsed}},
		ServiceNames: []string{"ssh"},
		Description:  "Secure Shell",
		Status:       portdex.StatusOfficial,
	}

	t.Run("lists matches with their port and category", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatKeywordLookup("ssh", []portdex.Match{{Port: 22, Assignment: a}}, portdex.FormatOptions{})
		assert.Contains(t, got, `Found 1 match for "ssh"`)
		assert.Contains(t, got, "1: port 22 (well-known)")
		assert.Contains(t, got, "Secure Shell")
	})

	t.Run("plural form for several matches", func(t *testing.T) {
		t.Parallel()

		matches := []portdex.Match{{Port: 22, Assignment: a}, {Port: 2222, Assignment: a}}
		got := portdex.FormatKeywordLookup("ssh", matches, portdex.FormatOptions{})
		assert.Contains(t, got, `Found 2 matches for "ssh"`)
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatKeywordLookup("zzz", nil, portdex.FormatOptions{})
		assert.Equal(t, `No usage found for "zzz"`, got)
	})
}

func TestFormatWarnings(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", portdex.FormatWarnings(nil))
	})

	t.Run("one line per warning under a count header", func(t *testing.T) {
		t.Parallel()

		got := portdex.FormatWarnings([]portdex.ParseWarning{
			{Row: 12, Reason: "row dropped: invalid port", Snippet: "N/A"},
			{Row: 40, Reason: "row dropped: invalid port", Snippet: "???"},
		})
		assert.Contains(t, got, "2 row(s) could not be fully parsed:")
		assert.Contains(t, got, "row 12")
		assert.Contains(t, got, "row 40")
	})
}
