package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/portdex/portdex"
	"github.com/portdex/portdex/update"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Store     portdex.CacheStore
	Snapshots portdex.SnapshotService
	Updater   *update.Updater
	Color     bool
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Lookup    LookupCmd    `cmd:"" default:"withargs" help:"Look up a port number or search term"`
	Update    UpdateCmd    `cmd:"" help:"Force a refresh of the port registry"`
	Revisions RevisionsCmd `cmd:"" help:"List cached source page snapshots"`
	Cache     CacheCmd     `cmd:"" help:"Show registry cache freshness and fingerprint"`

	Verbose bool          `short:"v" help:"Enable debug logging"`
	NoColor bool          `help:"Disable colored output"`
	Timeout time.Duration `default:"30s" help:"Network fetch timeout"`
}

// LookupCmd is the default command: answer a port or keyword query.
type LookupCmd struct {
	Query      string        `arg:"" help:"Port number (\"80\", \"443/udp\") or plain text search term"`
	Refresh    bool          `short:"r" help:"Force a cache refresh before answering"`
	Offline    bool          `help:"Never touch the network"`
	Revision   int64         `help:"Pin the answer to an exact source page revision"`
	Links      bool          `short:"l" help:"Show an additional links section"`
	References bool          `name:"references" aliases:"refs,notes" help:"Show notes and references"`
	JSON       bool          `short:"j" help:"Use machine-friendly JSON output"`
	MaxAge     time.Duration `default:"${default_max_age}" help:"How old a cached registry may be before it is refreshed"`
}

// UpdateCmd is the "update" subcommand.
type UpdateCmd struct {
	Revision int64 `help:"Fetch an exact source page revision"`
}

// RevisionsCmd is the "revisions" subcommand.
type RevisionsCmd struct{}

// CacheCmd is the "cache" subcommand.
type CacheCmd struct {
	MaxAge time.Duration `default:"${default_max_age}" help:"Freshness window to evaluate against"`
}
