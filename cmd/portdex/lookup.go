package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/portdex/portdex"
	"github.com/portdex/portdex/update"
)

// userQuery is the parsed form of the positional argument: either a port
// lookup (optionally protocol-qualified) or a plain text search.
type userQuery struct {
	port    uint16
	proto   portdex.Protocol
	keyword string
	isPort  bool
}

// parseQuery recognizes "80" and "443/udp" as port lookups; everything
// else, including a malformed port spec, is a search term.
func parseQuery(s string) userQuery {
	numberPart, protoPart, qualified := strings.Cut(s, "/")

	n, err := strconv.ParseUint(strings.TrimSpace(numberPart), 10, 16)
	if err != nil {
		return userQuery{keyword: s}
	}

	proto := portdex.ProtocolUnknown
	if qualified {
		proto, err = portdex.ParseProtocol(protoPart)
		if err != nil || proto == portdex.ProtocolUnknown {
			return userQuery{keyword: s}
		}
	}

	return userQuery{port: uint16(n), proto: proto, isPort: true}
}

// Run executes the lookup command.
func (c *LookupCmd) Run(deps *Dependencies) error {
	res, err := resolveRegistry(deps, c.Refresh, c.Offline, c.Revision, c.MaxAge)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", portdex.ErrorMessage(err))
		return err
	}

	reportProvenance(deps, res)

	q := parseQuery(c.Query)
	opts := portdex.FormatOptions{ShowLinks: c.Links, ShowRefs: c.References}

	if c.JSON {
		return writeJSON(deps, c.Query, q, res)
	}

	var out string
	if q.isPort {
		out = portdex.FormatPortLookup(q.port, q.proto, res.Registry.ByPortProtocol(q.port, q.proto), opts)
	} else {
		out = portdex.FormatKeywordLookup(q.keyword, res.Registry.ByKeyword(q.keyword), opts)
	}
	if deps.Color {
		out = boldFirstLine(out)
	}
	fmt.Fprintln(deps.Stdout, out)

	return nil
}

// resolveRegistry answers from the cache when it is fresh enough, and runs
// the refresh pipeline otherwise.
func resolveRegistry(deps *Dependencies, refresh, offline bool, revision int64, maxAge time.Duration) (*update.Result, error) {
	if !refresh && revision == 0 {
		if reg, err := deps.Store.Load(deps.Ctx); err == nil {
			if reg.IsFresh(time.Now(), maxAge) {
				return &update.Result{Registry: reg}, nil
			}
			if offline {
				// Offline answers from whatever is cached, but an aged
				// registry is flagged so the answer is never silently stale.
				return &update.Result{Registry: reg, Stale: true}, nil
			}
			deps.Logger.Debug("cached registry is stale", "builtAt", reg.BuiltAt())
		}
	}
	return deps.Updater.Refresh(deps.Ctx, update.Options{Revision: revision, Offline: offline})
}

// reportProvenance emits the advisory sections: degraded-mode notices and
// parse warnings, kept separate from the primary answer.
func reportProvenance(deps *Dependencies, res *update.Result) {
	if res.Stale {
		msg := "warning: could not refresh; answering from a previously cached registry"
		if deps.Color {
			msg = yellow(msg)
		}
		fmt.Fprintln(deps.Stderr, msg)
	}
	if res.FromSnapshot {
		msg := fmt.Sprintf("warning: answering from stored page snapshot (revision %d)", res.Revision)
		if deps.Color {
			msg = yellow(msg)
		}
		fmt.Fprintln(deps.Stderr, msg)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(deps.Stderr, portdex.FormatWarnings(res.Warnings))
	}
}

// jsonResult is the machine-friendly output envelope.
type jsonResult struct {
	Query    string                    `json:"query"`
	Port     *uint16                   `json:"port,omitempty"`
	Protocol string                    `json:"protocol,omitempty"`
	Category string                    `json:"category,omitempty"`
	UseCases []*portdex.PortAssignment `json:"useCases,omitempty"`
	Matches  []portdex.Match           `json:"matches,omitempty"`
	Warnings []portdex.ParseWarning    `json:"warnings,omitempty"`
}

func writeJSON(deps *Dependencies, rawQuery string, q userQuery, res *update.Result) error {
	out := jsonResult{Query: rawQuery, Warnings: res.Warnings}
	if q.isPort {
		port := q.port
		out.Port = &port
		out.Category = portdex.CategoryOf(q.port).String()
		if q.proto != portdex.ProtocolUnknown {
			out.Protocol = q.proto.String()
		}
		out.UseCases = res.Registry.ByPortProtocol(q.port, q.proto)
	} else {
		out.Matches = res.Registry.ByKeyword(q.keyword)
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
