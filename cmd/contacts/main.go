package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pbaille/contacts/internal/api"
	"github.com/pbaille/contacts/internal/app"
	"github.com/pbaille/contacts/internal/config"
	"github.com/pbaille/contacts/internal/datastore"
	"github.com/pbaille/contacts/internal/dom"
	"github.com/pbaille/contacts/internal/logging"
	"github.com/pbaille/contacts/internal/shell"
	"github.com/pbaille/contacts/internal/store"
	"github.com/pbaille/contacts/internal/view"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	apiURL     string
	dbPath     string
	logLevel   string

	cfg config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "contacts",
		Short:         "Contact manager with tags and search",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.apiURL != "" {
				cfg.Client.APIURL = opts.apiURL
			}
			if opts.dbPath != "" {
				cfg.Server.DB = opts.dbPath
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			opts.cfg = cfg
			logging.ConfigureRuntime(cfg.Log.Level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (.toml or .yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", "", "contacts resource URL")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path for serve")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, off)")

	rootCmd.AddCommand(shellCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))

	return rootCmd
}

// loadPage builds the renderer from the configured page or the embedded one.
func loadPage(cfg config.Config, confirm view.Confirmer) (*view.Renderer, error) {
	opts := []view.Option{view.WithConfirmer(confirm)}
	if cfg.Client.Page == "" {
		return view.NewDefault(opts...)
	}

	f, err := os.Open(cfg.Client.Page)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, err
	}
	return view.New(doc, opts...)
}

func startApp(ctx context.Context, cfg config.Config, confirm view.Confirmer) (*view.Renderer, error) {
	r, err := loadPage(cfg, confirm)
	if err != nil {
		return nil, err
	}

	ds := datastore.New(cfg.Client.APIURL)
	if err := app.New(ds, r).Start(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func shellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse and edit contacts interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := startApp(cmd.Context(), opts.cfg, view.SurveyConfirmer{})
			if err != nil {
				return err
			}
			return shell.New(r, cmd.OutOrStdout(), shell.SurveyPrompter{}).Run(cmd.Context())
		},
	}
}

func listCmd(opts *rootOptions) *cobra.Command {
	var (
		search string
		tag    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the contact list",
		RunE: func(cmd *cobra.Command, args []string) error {
			refuse := view.ConfirmFunc(func(string) bool { return false })
			r, err := startApp(cmd.Context(), opts.cfg, refuse)
			if err != nil {
				return err
			}

			sh := shell.New(r, cmd.OutOrStdout(), nil)
			if tag != "" {
				if _, err := sh.Exec("tag " + tag); err != nil {
					return err
				}
				return nil
			}
			if search != "" {
				_, err := sh.Exec("type " + search)
				return err
			}
			sh.Show()
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only show contacts whose name contains this text")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only show contacts with this tag")
	return cmd
}

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the development contacts API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.Server.Addr
			}

			dbPath := opts.cfg.Server.DB
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return fmt.Errorf("create db dir: %w", err)
			}
			s, err := store.New(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			return api.New(s, addr).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config, :3000)")
	return cmd
}
