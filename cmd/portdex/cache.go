package main

import (
	"fmt"
	"time"

	"github.com/portdex/portdex"
)

// Run executes the cache command: report what is on disk and whether it
// would be used as-is by a lookup.
func (c *CacheCmd) Run(deps *Dependencies) error {
	reg, err := deps.Store.Load(deps.Ctx)
	if err != nil {
		if portdex.ErrorCode(err) == portdex.ENOTFOUND {
			fmt.Fprintln(deps.Stdout, "no cached registry")
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", portdex.ErrorMessage(err))
		return err
	}

	now := time.Now()
	freshness := "stale"
	if reg.IsFresh(now, c.MaxAge) {
		freshness = "fresh"
	}

	fmt.Fprintf(deps.Stdout, "assignments: %d\n", reg.Len())
	fmt.Fprintf(deps.Stdout, "built:       %s (%s ago)\n",
		reg.BuiltAt().Format("2006-01-02 15:04:05 MST"),
		now.Sub(reg.BuiltAt()).Round(time.Minute))
	fmt.Fprintf(deps.Stdout, "fingerprint: %s\n", reg.SourceFingerprint())
	fmt.Fprintf(deps.Stdout, "status:      %s (max age %s)\n", freshness, c.MaxAge)
	return nil
}
