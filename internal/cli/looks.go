package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/areebaatariq/turnstyle-platform-sub001/internal/store"
)

// looksCommand creates the looks command group for browsing saved looks.
func (c *CLI) looksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "looks",
		Short: "Browse and manage saved looks",
		Long: `Browse and manage saved looks.

Without a subcommand an interactive picker opens; selecting a look prints
its details and placements.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLooksPicker(cmd.Context())
		},
	}

	cmd.AddCommand(c.looksListCommand())
	cmd.AddCommand(c.looksShowCommand())
	cmd.AddCommand(c.looksDeleteCommand())
	cmd.AddCommand(c.looksExportCommand())

	return cmd
}

func (c *CLI) looksListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved looks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLooksList(cmd.Context())
		},
	}
}

func (c *CLI) looksShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [look-id]",
		Short: "Show a look's details and placements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLooksShow(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) looksDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [look-id]",
		Short: "Delete a look and its placements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLooksDelete(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) looksExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [look-id]",
		Short: "Write a look's composite image to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLooksExport(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "look.png", "output file path")

	return cmd
}

func (c *CLI) runLooksPicker(ctx context.Context) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	looks, err := st.ListLooks(ctx, c.Config.UserID)
	if err != nil {
		return err
	}
	if len(looks) == 0 {
		printInfo("No saved looks")
		printNextStep("Save one with", appName+" save look.json")
		return nil
	}

	counts := make(map[string]int, len(looks))
	for _, l := range looks {
		records, err := st.ListPlacements(ctx, l.ID)
		if err != nil {
			continue
		}
		counts[l.ID] = len(records)
	}

	model := NewLookListModel(looks, counts)
	final, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	result, ok := final.(LookListModel)
	if !ok || result.Selected == nil {
		return nil
	}
	return c.printLook(ctx, st, result.Selected.Look)
}

func (c *CLI) runLooksList(ctx context.Context) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	looks, err := st.ListLooks(ctx, c.Config.UserID)
	if err != nil {
		return err
	}
	if len(looks) == 0 {
		printInfo("No saved looks")
		return nil
	}

	for _, l := range looks {
		composite := StyleDim.Render("no composite")
		if l.CompositeImage != "" {
			composite = StyleSuccess.Render("composite")
		}
		fmt.Printf("%s  %s  %s  %s\n",
			StyleValue.Render(l.ID),
			StyleHighlight.Render(l.Name),
			StyleDim.Render(formatRelativeTime(l.UpdatedAt)),
			composite,
		)
	}
	return nil
}

func (c *CLI) runLooksShow(ctx context.Context, lookID string) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	look, err := st.GetLook(ctx, lookID)
	if err != nil {
		return err
	}
	return c.printLook(ctx, st, look)
}

func (c *CLI) printLook(ctx context.Context, st store.Store, look *store.Look) error {
	printKeyValue("Look ID", look.ID)
	printKeyValue("Name", look.Name)
	printKeyValue("Updated", formatRelativeTime(look.UpdatedAt))
	if look.CompositeImage != "" {
		printKeyValue("Composite", fmt.Sprintf("%d bytes (data URI)", len(look.CompositeImage)))
	}

	records, err := st.ListPlacements(ctx, look.ID)
	if err != nil {
		return err
	}
	printNewline()
	printInfo("%d placed items", len(records))
	for _, r := range records {
		printDetail("%-24s  x=%.1f%%  y=%.1f%%  scale=%.2f", r.ItemID, r.Pos.X, r.Pos.Y, r.Scale)
	}
	return nil
}

func (c *CLI) runLooksDelete(ctx context.Context, lookID string) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	look, err := st.GetLook(ctx, lookID)
	if err != nil {
		return err
	}
	if err := st.DeleteLook(ctx, lookID); err != nil {
		return err
	}
	printSuccess("Deleted %q", look.Name)
	return nil
}

func (c *CLI) runLooksExport(ctx context.Context, lookID, output string) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	look, err := st.GetLook(ctx, lookID)
	if err != nil {
		return err
	}
	if look.CompositeImage == "" {
		printWarning("Look %q has no composite yet", look.Name)
		printNextStep("Render one with", appName+" save")
		return nil
	}

	data, err := decodePNGDataURI(look.CompositeImage)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	printSuccess("Exported %q", look.Name)
	printFile(output)
	return nil
}
