package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/observability"
)

// composeCommand creates the compose command for rendering a look file.
func (c *CLI) composeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "compose [look.json]",
		Short: "Render a look file to a composite image",
		Long: `Render a look file to a composite PNG.

The look file lists wardrobe items with their image references and optional
positions and scales. Items without a position fall into the next default
slot. Remote images are fetched with retries and cached locally, so repeated
renders of the same look are fast.

Background removal follows the config file: none (default), chroma keying
for items photographed on a uniform backdrop, or an external removal API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompose(cmd.Context(), args[0], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "look.png", "output PNG file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runCompose loads the look file, renders it, and writes the PNG.
func (c *CLI) runCompose(ctx context.Context, input, output string, noCache bool) error {
	lf, arr, err := c.loadLookFile(input)
	if err != nil {
		return err
	}

	imgCache, err := c.sharedCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer imgCache.Close()
	gen := c.newGenerator(imgCache)

	stats := &renderStats{}
	observability.SetCompositeHooks(stats)
	observability.SetCacheHooks(stats)
	defer observability.Reset()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d items", arr.Len()))
	spinner.Start()

	lookID := lf.Name
	if lookID == "" {
		lookID = input
	}
	uri, err := gen.Generate(ctx, lookID, arr.Entries(), arr.Profile())
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	data, err := decodePNGDataURI(uri)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	skipped, hits, misses := stats.snapshot()
	printSuccess("Rendered %q", lookID)
	printStats(arr.Len()-skipped, skipped, hits, misses)
	printFile(output)
	return nil
}

// decodePNGDataURI extracts the raw PNG bytes from a composite data URI.
func decodePNGDataURI(uri string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(uri, prefix) {
		return nil, fmt.Errorf("unexpected composite format")
	}
	return base64.StdEncoding.DecodeString(uri[len(prefix):])
}
