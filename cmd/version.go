package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wselearn/wse/internal/api"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version and check the server's",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "wse", version)

		if offline, _ := cmd.Flags().GetBool("offline"); offline {
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client, err := api.New(cfg.API, nil)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		h, err := client.Health(ctx)
		if err != nil {
			fmt.Fprintf(out, "server %s: unreachable (%v)\n", cfg.API.BaseURL, err)
			return nil
		}

		apiVersion := h.APIVersion
		if apiVersion == "" {
			apiVersion = "unknown"
		}
		fmt.Fprintf(out, "server %s: api %s\n", cfg.API.BaseURL, apiVersion)
		if err := h.CheckCompatible(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("offline", false, "Skip the server check")
}
