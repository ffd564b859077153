package main

import (
	"fmt"

	"github.com/portdex/portdex"
)

// Run executes the revisions command: list the source page snapshots that
// are available for offline and pinned lookups.
func (c *RevisionsCmd) Run(deps *Dependencies) error {
	if deps.Snapshots == nil {
		return portdex.Errorf(portdex.EUNAVAILABLE, "snapshot store is not available")
	}

	snaps, err := deps.Snapshots.ListSnapshots(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", portdex.ErrorMessage(err))
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(deps.Stdout, "no snapshots stored")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%-12s  %-20s  %s\n", "REVISION", "FETCHED", "HASH")
	for _, s := range snaps {
		fmt.Fprintf(deps.Stdout, "%-12d  %-20s  %s\n",
			s.Revision, s.FetchedAt.Format("2006-01-02 15:04:05"), s.ContentHash)
	}
	return nil
}
