package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pdturney/spots-and-stripes/internal/tui"
)

// viewCmd shows an RLE pattern file in the terminal
var viewCmd = &cobra.Command{
	Use:   "view [pattern.rle]",
	Short: "View an RLE pattern file",
	Long: `Renders an RLE pattern file in the terminal and reloads it when the
file changes, so the viewer tracks a running experiment's photo files.

Example:
  spots view results/photo_adult1.rle`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	model, err := tui.NewViewer(args[0])
	if err != nil {
		return err
	}
	defer model.Close()

	_, err = tea.NewProgram(model).Run()
	return err
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
