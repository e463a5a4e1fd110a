package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/auth"
	"github.com/wselearn/wse/internal/config"
	"github.com/wselearn/wse/internal/exercise"
	"github.com/wselearn/wse/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "wse",
	Short: "Learn foreign words and glossary terms",
	Long:  "wse is a terminal client for the WSE vocabulary and glossary learning service.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WSE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides WSE_CONFIG env var)")
	rootCmd.PersistentFlags().String("server", "", "API base URL (overrides WSE_SERVER env var)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies the global flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if s, _ := cmd.Flags().GetString("server"); s != "" {
		cfg.API.BaseURL = s
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config:\n%w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file (or WSE_DB), then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Database.Path != "" {
		return cfg.Database.Path, store.EnsureDir(cfg.Database.Path)
	}
	return store.DefaultDBPath()
}

// env bundles what most commands need: config, store, client and session.
type env struct {
	cfg    *config.Config
	store  *store.Store
	client *api.Client
	auth   *auth.Manager
}

// openEnv loads config, opens the store and restores a saved session.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client, err := api.New(cfg.API, st.EventRepo())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build api client: %w", err)
	}
	mgr := auth.NewManager(client, st.CredentialRepo())
	if _, err := mgr.Restore(cmd.Context()); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	return &env{cfg: cfg, store: st, client: client, auth: mgr}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// variant looks up the variant named by the --variant flag.
func (e *env) variant(cmd *cobra.Command) (exercise.Variant, error) {
	name, _ := cmd.Flags().GetString("variant")
	v, ok := e.cfg.Variant(name)
	if !ok {
		return exercise.Variant{}, fmt.Errorf("unknown variant %q", name)
	}
	return v, nil
}

// requireLogin fails early with a hint when there is no saved session.
func (e *env) requireLogin() error {
	if !e.auth.LoggedIn() {
		return fmt.Errorf("not signed in; run: wse login")
	}
	return nil
}
