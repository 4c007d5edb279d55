// Command promptctl manages the prompt collection from the terminal using the
// same storage backends as the server.
package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alanyang/prompt-manager/internal/config"
	"github.com/alanyang/prompt-manager/internal/logging"
	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
	"github.com/alanyang/prompt-manager/internal/wire"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries flag values and the service opened for one invocation.
type cli struct {
	dataDir    string
	backend    string
	sqlitePath string
	strict     bool
	verbose    bool

	out     io.Writer
	logger  *zap.Logger
	storage *wire.Storage
	svc     *promptsvc.Service
}

func newRootCmd(out io.Writer) *cobra.Command {
	_, root := newCLI(out)
	return root
}

func newCLI(out io.Writer) (*cli, *cobra.Command) {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "promptctl",
		Short: "Manage saved prompts",
		Long: `promptctl reads and edits the prompt collection directly in storage.

Configuration comes from the same environment variables as the server
(STORAGE_BACKEND, DATA_DIR, SQLITE_PATH, DATABASE_URL). Flags override them.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "Directory of the file backend (overrides DATA_DIR)")
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "Storage backend: file, postgres, sqlite, memory (overrides STORAGE_BACKEND)")
	root.PersistentFlags().StringVar(&c.sqlitePath, "sqlite-path", "", "SQLite database file (overrides SQLITE_PATH)")
	root.PersistentFlags().BoolVar(&c.strict, "strict", false, "Fail when an id does not exist")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log at debug level to stderr")

	root.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.addCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.sortOrderCmd(),
		c.categoriesCmd(),
	)
	c.closeAfterRun(root)
	return c, root
}

// closeAfterRun makes every command release storage when it returns.
// PersistentPostRun does not run when RunE fails.
func (c *cli) closeAfterRun(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		if run := sub.RunE; run != nil {
			sub.RunE = func(cmd *cobra.Command, args []string) error {
				defer c.close()
				return run(cmd, args)
			}
		}
		c.closeAfterRun(sub)
	}
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	config.LoadDotEnv(".env")
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	if c.backend != "" {
		cfg.StorageBackend = config.Backend(c.backend)
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	if c.sqlitePath != "" {
		cfg.SQLitePath = c.sqlitePath
	}
	if c.strict {
		cfg.StrictNotFound = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	c.logger, err = logging.New(logging.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c.storage = wire.OpenStore(ctx, cfg, c.logger)

	var opts []promptsvc.Option
	if cfg.StrictNotFound {
		opts = append(opts, promptsvc.WithStrictNotFound())
	}
	c.svc = promptsvc.NewService(c.storage.Store, nil, c.logger, opts...)
	if err := c.svc.Load(ctx); err != nil {
		c.close()
		return err
	}
	return nil
}

func (c *cli) close() {
	if c.storage != nil {
		c.storage.Close()
		c.storage = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
