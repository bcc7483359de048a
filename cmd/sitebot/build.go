package main

import (
	"fmt"
	"io"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/crawl"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "Building index for %s (%d pages)\n", deps.Config.Site.BaseURL, len(deps.Config.Site.Pages))

	result, err := deps.Builder.Build(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitebot.ErrorMessage(err))
		return err
	}

	printBuildResult(deps.Stdout, result)
	return nil
}

// printBuildResult writes a build summary. A delegated build prints the
// command's output instead of counters.
func printBuildResult(w io.Writer, r *sitebot.BuildResult) {
	if r.Output != "" {
		fmt.Fprint(w, r.Output)
		return
	}

	fmt.Fprintf(w, "  Indexed %d pages (%d skipped)\n", r.Pages, r.Skipped)
	fmt.Fprintf(w, "  Wrote %d chunks (%s", r.Chunks, crawl.FormatBytes(r.Bytes))
	if r.Tokens > 0 {
		fmt.Fprintf(w, ", %s", crawl.FormatTokens(r.Tokens))
	}
	fmt.Fprintln(w, ")")
	if r.Checksum != "" {
		fmt.Fprintf(w, "  Checksum %s\n", r.Checksum)
	}
}
