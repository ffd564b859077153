package main

import (
	"fmt"

	"github.com/portdex/portdex"
	"github.com/portdex/portdex/update"
)

// Run executes the update command: always hit the network and rebuild the
// cached registry, regardless of freshness.
func (c *UpdateCmd) Run(deps *Dependencies) error {
	res, err := deps.Updater.Refresh(deps.Ctx, update.Options{Revision: c.Revision})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", portdex.ErrorMessage(err))
		return err
	}

	if res.Stale || res.FromSnapshot {
		reportProvenance(deps, res)
		return portdex.Errorf(portdex.EUNAVAILABLE, "source page could not be fetched")
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(deps.Stderr, portdex.FormatWarnings(res.Warnings))
	}

	fmt.Fprintf(deps.Stdout, "registry updated: %d assignments (built %s)\n",
		res.Registry.Len(), res.Registry.BuiltAt().Format("2006-01-02 15:04:05 MST"))
	if res.Revision != 0 {
		fmt.Fprintf(deps.Stdout, "source page revision: %d\n", res.Revision)
	}
	return nil
}
