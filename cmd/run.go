package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wselearn/wse/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive client",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	runCmd.Flags().Bool("skip-welcome", false, "Open the menu directly")
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	skip, _ := cmd.Flags().GetBool("skip-welcome")
	return app.Run(app.Options{
		Config:      e.cfg,
		Client:      e.client,
		Auth:        e.auth,
		Store:       e.store,
		SkipWelcome: skip,
	})
}
