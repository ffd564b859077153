// Package portdex answers "what is port N used for?" offline by distilling
// Wikipedia's list of TCP and UDP port numbers into a durable, queryable
// registry. It fetches the page, parses its tables tolerantly, caches the
// built registry with a freshness policy, and serves port and keyword
// lookups against it.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, http/).
package portdex

import "time"

// DefaultPageURL is the source document for the port registry.
const DefaultPageURL = "https://en.wikipedia.org/wiki/List_of_TCP_and_UDP_port_numbers"

// DefaultHistoryAPIURL is the Wikimedia history endpoint used to resolve
// the latest revision ID of the source document.
const DefaultHistoryAPIURL = "https://api.wikimedia.org/core/v1/wikipedia/en/page/List_of_TCP_and_UDP_port_numbers/history"

// DefaultMaxAge is how long a cached registry is considered fresh.
const DefaultMaxAge = 7 * 24 * time.Hour
