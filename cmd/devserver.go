package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wselearn/wse/internal/mockapi"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Serve an in-memory API for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		seed, _ := cmd.Flags().GetBool("seed")

		srv := mockapi.New(cfg.Variants)
		if seed {
			if err := srv.SeedDemo(); err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
		}

		hs := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- hs.ListenAndServe()
		}()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Serving API %s on http://%s\n", mockapi.APIVersion, addr)
		if seed {
			fmt.Fprintf(out, "Demo account: %s / %s\n", mockapi.DemoUser, mockapi.DemoPassword)
		}

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		fmt.Fprintln(out, "Stopped.")
		return nil
	},
}

func init() {
	devserverCmd.Flags().String("addr", "127.0.0.1:8000", "Listen address")
	devserverCmd.Flags().Bool("seed", true, "Create the demo account and sample items")
}
