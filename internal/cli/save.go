package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/composer"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/gesture"
)

// saveCommand creates the save command for persisting a look file.
func (c *CLI) saveCommand() *cobra.Command {
	var (
		name    string
		lookID  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "save [look.json]",
		Short: "Save a look file to the configured store",
		Long: `Save a look file to the configured store.

Saving diffs the file's arrangement against the look's stored placement
records and issues only the changes: new items are created, moved or resized
items are updated, and dropped items are deleted. Pass --look to update an
existing look; otherwise a new one is created.

After a successful save the composite image is rendered and attached to
the look.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSave(cmd.Context(), args[0], name, lookID, noCache)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "look name (defaults to the file's name field)")
	cmd.Flags().StringVar(&lookID, "look", "", "id of an existing look to update")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runSave(ctx context.Context, input, name, lookID string, noCache bool) error {
	lf, arr, err := c.loadLookFile(input)
	if err != nil {
		return err
	}
	if name == "" {
		name = lf.Name
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	imgCache, err := c.sharedCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer imgCache.Close()

	session := composer.NewSession(composer.Options{
		LookID:     lookID,
		UserID:     c.Config.UserID,
		Profile:    arr.Profile(),
		Store:      st,
		Generator:  c.newGenerator(imgCache),
		Palette:    lf.palette(),
		CanvasSize: func() gesture.Size { return gesture.Size{Width: 1000, Height: 1333} },
		Logger:     c.Logger,
	})
	if err := session.Load(ctx); err != nil {
		return err
	}
	session.SetEntries(arr.Entries())

	spinner := newSpinnerWithContext(ctx, "Saving look")
	spinner.Start()
	if err := session.Save(ctx, name); err != nil {
		spinner.StopWithError("Save failed")
		return err
	}
	spinner.Stop()

	// The composite renders detached; wait so the process does not exit
	// before it lands.
	session.WaitComposites()

	printSuccess("Saved %q with %d items", name, arr.Len())
	printKeyValue("Look ID", session.LookID())
	return nil
}
