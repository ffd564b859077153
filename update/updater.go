// Package update orchestrates the refresh pipeline: resolve the source
// revision, fetch the document, snapshot it, parse it, build the registry,
// and persist the result.
package update

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/portdex/portdex"
	"golang.org/x/sync/errgroup"
)

// Updater wires the pipeline collaborators together. Fetcher, Parser, and
// Cache are required; Revisions and Snapshots are optional and disable
// revision pinning and the snapshot fallback respectively when nil.
type Updater struct {
	Fetcher   portdex.Fetcher
	Revisions portdex.RevisionSource
	Parser    portdex.Parser
	Cache     portdex.CacheStore
	Snapshots portdex.SnapshotService

	// PageURL is the source document location.
	PageURL string

	// Logger receives advisory messages. Defaults to slog.Default().
	Logger *slog.Logger

	// Now is the clock, overridable in tests.
	Now func() time.Time

	// RetryDelays overrides the fetch backoff schedule.
	RetryDelays []time.Duration
}

// Options selects what to refresh.
type Options struct {
	// Revision pins the refresh to an exact document revision. Zero means
	// latest.
	Revision int64

	// Offline forbids network use; only cached state is consulted.
	Offline bool
}

// Result is a refreshed (or recovered) registry plus its provenance.
type Result struct {
	Registry *portdex.PortRegistry
	Warnings []portdex.ParseWarning

	// Stale is set when the registry came from a pre-existing cache
	// envelope after the fetch failed.
	Stale bool

	// FromSnapshot is set when the registry was re-parsed from a stored
	// page snapshot rather than a live fetch.
	FromSnapshot bool

	// Revision is the document revision used, when known.
	Revision int64
}

// Refresh obtains a registry. Online it fetches, snapshots, parses, builds,
// and saves; on fetch failure it degrades to the newest usable cache
// envelope, then to the newest stored snapshot, and only fails when no
// source of registry data remains.
func (u *Updater) Refresh(ctx context.Context, opts Options) (*Result, error) {
	if opts.Offline {
		return u.refreshOffline(ctx, opts)
	}

	revision := opts.Revision
	var prior *portdex.PortRegistry

	// The revision query and the fallback-envelope preload are independent
	// of each other; run them concurrently. Neither failure is fatal.
	g, gctx := errgroup.WithContext(ctx)
	if revision == 0 && u.Revisions != nil {
		g.Go(func() error {
			rev, err := u.Revisions.LatestRevision(gctx)
			if err != nil {
				u.logger().Warn("failed to query latest revision", "err", err)
				return nil
			}
			revision = rev
			return nil
		})
	}
	g.Go(func() error {
		reg, err := u.Cache.Load(gctx)
		if err != nil {
			return nil // miss; nothing to fall back to
		}
		prior = reg
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	body, err := FetchWithRetryDelays(ctx, u.pageURL(revision), u.Fetcher.Fetch, u.logf, u.retryDelays())
	if err != nil {
		if prior != nil {
			u.logger().Warn("fetch failed, serving stale cached registry", "err", err)
			return &Result{Registry: prior, Stale: true}, nil
		}
		if res, snapErr := u.fromSnapshot(ctx, opts.Revision); snapErr == nil {
			u.logger().Warn("fetch failed, re-parsed stored snapshot", "err", err, "revision", res.Revision)
			return res, nil
		}
		return nil, err
	}

	if u.Snapshots != nil && revision != 0 {
		snap := &portdex.Snapshot{
			Revision:  revision,
			Content:   string(body),
			FetchedAt: u.now().UTC(),
		}
		if err := u.Snapshots.SaveSnapshot(ctx, snap); err != nil {
			u.logger().Warn("failed to store page snapshot", "revision", revision, "err", err)
		}
	}

	assignments, warnings, err := u.Parser.Parse(string(body))
	if err != nil {
		return nil, err
	}

	registry := portdex.BuildRegistry(assignments, portdex.HashContent(body), u.now().UTC())
	if err := u.Cache.Save(ctx, registry); err != nil {
		u.logger().Warn("failed to persist registry cache", "err", err)
	}

	return &Result{Registry: registry, Warnings: warnings, Revision: revision}, nil
}

// refreshOffline serves entirely from local state: a pinned snapshot, the
// cache envelope, or the newest snapshot, in that order.
func (u *Updater) refreshOffline(ctx context.Context, opts Options) (*Result, error) {
	if opts.Revision != 0 {
		return u.fromSnapshot(ctx, opts.Revision)
	}

	if reg, err := u.Cache.Load(ctx); err == nil {
		return &Result{Registry: reg}, nil
	}

	if res, err := u.fromSnapshot(ctx, 0); err == nil {
		return res, nil
	}

	return nil, portdex.Errorf(portdex.EUNAVAILABLE, "offline and no cached registry or snapshot available")
}

// fromSnapshot re-parses a stored snapshot. revision 0 selects the newest.
func (u *Updater) fromSnapshot(ctx context.Context, revision int64) (*Result, error) {
	if u.Snapshots == nil {
		return nil, portdex.Errorf(portdex.ENOTFOUND, "snapshot store not configured")
	}

	var snap *portdex.Snapshot
	var err error
	if revision != 0 {
		snap, err = u.Snapshots.FindSnapshotByRevision(ctx, revision)
	} else {
		snap, err = u.Snapshots.LatestSnapshot(ctx)
	}
	if err != nil {
		return nil, err
	}

	assignments, warnings, err := u.Parser.Parse(snap.Content)
	if err != nil {
		return nil, err
	}

	// BuiltAt reflects when the snapshot was fetched, not when it was
	// re-parsed, so freshness still measures data age.
	registry := portdex.BuildRegistry(assignments, snap.ContentHash, snap.FetchedAt)
	return &Result{
		Registry:     registry,
		Warnings:     warnings,
		FromSnapshot: true,
		Revision:     snap.Revision,
	}, nil
}

// pageURL appends the revision pin to the source URL when one is known.
func (u *Updater) pageURL(revision int64) string {
	if revision == 0 {
		return u.PageURL
	}
	sep := "?"
	if strings.Contains(u.PageURL, "?") {
		sep = "&"
	}
	return u.PageURL + sep + "oldid=" + strconv.FormatInt(revision, 10)
}

func (u *Updater) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}

func (u *Updater) logf(format string, args ...any) {
	u.logger().Debug("fetch retry", "detail", fmt.Sprintf(format, args...))
}

func (u *Updater) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u *Updater) retryDelays() []time.Duration {
	if u.RetryDelays != nil {
		return u.RetryDelays
	}
	return DefaultRetryDelays()
}
