package main

import (
	"fmt"
	"time"

	"github.com/ohmanagement/sitebot"
)

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	result, err := deps.Refresher.Refresh(deps.Ctx, c.Manual)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitebot.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s (%s)\n", result.Message, result.Timestamp.Format(time.RFC3339))
	if result.Build != nil {
		printBuildResult(deps.Stdout, result.Build)
	}
	return nil
}
