package portdex_test

import (
	"testing"
	"time"

	"github.com/portdex/portdex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssignment(lo, hi uint16, service, description string) *portdex.PortAssignment {
	return &portdex.PortAssignment{
		Ports:        portdex.PortRange{Lo: lo, Hi: hi},
		Protocols:    []portdex.ProtocolClaim{{Protocol: portdex.ProtocolTCP, Claim: portdex.ClaimUsed}},
		ServiceNames: []string{service},
		Description:  description,
		Status:       portdex.StatusOfficial,
	}
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	builtAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	reg := portdex.BuildRegistry([]*portdex.PortAssignment{
		testAssignment(80, 80, "http", "Hypertext Transfer Protocol"),
		testAssignment(8080, 8080, "http-alt", "Alternative HTTP port"),
	}, "abc123", builtAt)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, builtAt, reg.BuiltAt())
	assert.Equal(t, "abc123", reg.SourceFingerprint())
	assert.Len(t, reg.Assignments(), 2)
}

func TestPortRegistry_IsFresh(t *testing.T) {
	t.Parallel()

	builtAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	reg := portdex.BuildRegistry(nil, "", builtAt)

	assert.True(t, reg.IsFresh(builtAt.Add(time.Hour), 7*24*time.Hour))
	assert.False(t, reg.IsFresh(builtAt.Add(8*24*time.Hour), 7*24*time.Hour))
	assert.False(t, reg.IsFresh(builtAt.Add(7*24*time.Hour), 7*24*time.Hour))
}

func TestPortRegistry_ByPort(t *testing.T) {
	t.Parallel()

	t.Run("preserves first-seen order for duplicate ports", func(t *testing.T) {
		t.Parallel()

		first := testAssignment(80, 80, "http", "Hypertext Transfer Protocol")
		second := testAssignment(80, 80, "http-unofficial", "Some unofficial reuse")
		reg := portdex.BuildRegistry([]*portdex.PortAssignment{first, second}, "", time.Now())

		got := reg.ByPort(80)
		require.Len(t, got, 2)
		assert.Same(t, first, got[0])
		assert.Same(t, second, got[1])
	})

	t.Run("range assignments cover every port in the range", func(t *testing.T) {
		t.Parallel()

		a := testAssignment(6881, 6887, "bittorrent", "BitTorrent peer traffic")
		reg := portdex.BuildRegistry([]*portdex.PortAssignment{a}, "", time.Now())

		for port := uint16(6881); port <= 6887; port++ {
			require.Len(t, reg.ByPort(port), 1, "port %d", port)
		}
		assert.Empty(t, reg.ByPort(6880))
		assert.Empty(t, reg.ByPort(6888))
	})

	t.Run("empty result is a valid answer", func(t *testing.T) {
		t.Parallel()

		reg := portdex.BuildRegistry(nil, "", time.Now())
		assert.Empty(t, reg.ByPort(9999))
	})
}

func TestPortRegistry_ByPortProtocol(t *testing.T) {
	t.Parallel()

	dns := &portdex.PortAssignment{
		Ports: portdex.SinglePort(53),
		Protocols: []portdex.ProtocolClaim{
			{Protocol: portdex.ProtocolTCP, Claim: portdex.ClaimUsed},
			{Protocol: portdex.ProtocolUDP, Claim: portdex.ClaimUsed},
		},
		ServiceNames: []string{"domain"},
	}
	tcpOnly := &portdex.PortAssignment{
		Ports: portdex.SinglePort(53),
		Protocols: []portdex.ProtocolClaim{
			{Protocol: portdex.ProtocolTCP, Claim: portdex.ClaimUsed},
			{Protocol: portdex.ProtocolUDP, Claim: portdex.ClaimNotUsed},
		},
		ServiceNames: []string{"tcp-thing"},
	}
	reg := portdex.BuildRegistry([]*portdex.PortAssignment{dns, tcpOnly}, "", time.Now())

	assert.Len(t, reg.ByPortProtocol(53, portdex.ProtocolUnknown), 2)
	assert.Len(t, reg.ByPortProtocol(53, portdex.ProtocolTCP), 2)

	udp := reg.ByPortProtocol(53, portdex.ProtocolUDP)
	require.Len(t, udp, 1)
	assert.Same(t, dns, udp[0])
}

func TestPortRegistry_ByKeyword(t *testing.T) {
	t.Parallel()

	http := testAssignment(80, 80, "http", "Hypertext Transfer Protocol")
	httpAlt := testAssignment(8080, 8080, "http-alt", "Alternative port often used for HTTP proxies")
	ssh := testAssignment(22, 22, "ssh", "Secure Shell")
	reg := portdex.BuildRegistry([]*portdex.PortAssignment{httpAlt, http, ssh}, "", time.Now())

	t.Run("matches tokens from service names and descriptions", func(t *testing.T) {
		t.Parallel()

		got := reg.ByKeyword("shell")
		require.Len(t, got, 1)
		assert.Equal(t, uint16(22), got[0].Port)
		assert.Same(t, ssh, got[0].Assignment)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		t.Parallel()

		assert.NotEmpty(t, reg.ByKeyword("SHELL"))
		assert.NotEmpty(t, reg.ByKeyword("Hypertext"))
	})

	t.Run("exact token matches rank above substring matches", func(t *testing.T) {
		t.Parallel()

		got := reg.ByKeyword("http")
		// Both assignments tokenize "http" exactly ("http-alt" splits into
		// "http" and "alt"), so ordering falls back to ascending port.
		require.Len(t, got, 2)
		assert.Equal(t, uint16(80), got[0].Port)
		assert.Equal(t, uint16(8080), got[1].Port)
	})

	t.Run("substring matches are found", func(t *testing.T) {
		t.Parallel()

		got := reg.ByKeyword("hyper")
		require.Len(t, got, 1)
		assert.Same(t, http, got[0].Assignment)
	})

	t.Run("no duplicate port-assignment pairs", func(t *testing.T) {
		t.Parallel()

		// "prox" is a substring of "proxies" only; "proxies" is also an
		// exact miss, so the result must contain httpAlt exactly once.
		got := reg.ByKeyword("prox")
		require.Len(t, got, 1)
		assert.Same(t, httpAlt, got[0].Assignment)
	})

	t.Run("no match returns empty, not an error", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, reg.ByKeyword("zzzz"))
		assert.Empty(t, reg.ByKeyword(""))
		assert.Empty(t, reg.ByKeyword("   "))
	})
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"hypertext", "transfer", "protocol", "http"},
		portdex.Tokenize("Hypertext Transfer Protocol (HTTP)"))
	assert.Equal(t,
		[]string{"http", "alt"},
		portdex.Tokenize("http-alt"))
	assert.Empty(t, portdex.Tokenize("  ...  "))
}
