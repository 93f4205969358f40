// Package cli implements the tiledoc command-line interface. Each command
// loads documents from the store, applies one document operation and saves
// the result.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/internal/clipboard"
	"github.com/mesh-intelligence/tiledoc/internal/paths"
	"github.com/mesh-intelligence/tiledoc/internal/sqlite"
	"github.com/mesh-intelligence/tiledoc/internal/tiles"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app carries flag values and the resources built from them for a single
// command invocation.
type app struct {
	configDirFlag string
	dataDirFlag   string
	debug         bool
	jsonMode      bool

	configDir string
	cfg       types.Config
	log       *zap.Logger
	reg       *tiles.Registry
	store     *sqlite.Backend
}

// NewRootCmd creates the top-level "tiledoc" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *app) {
	a := &app{reg: tiles.NewDefaultRegistry(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "tiledoc",
		Short: "Edit tile documents kept in a local document store",
		Long: "tiledoc manages documents made of tiles laid out in rows: add, move,\n" +
			"delete and copy tiles, and exchange them through a clipboard file.",
		// Errors are reported by Execute.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDirFlag, "config-dir", "", "configuration directory (default: platform config dir, or $"+paths.EnvConfigDir+")")
	pf.StringVar(&a.dataDirFlag, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.BoolVar(&a.debug, "debug", false, "log at debug level in development format")
	pf.BoolVar(&a.jsonMode, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newNewCmd(),
		a.newListCmd(),
		a.newShowCmd(),
		a.newRemoveCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newAddCmd(),
		a.newMoveCmd(),
		a.newDeleteCmd(),
		a.newDuplicateCmd(),
		a.newCopyCmd(),
		a.newClipboardCmd(),
		a.newPasteCmd(),
	)
	return root, a
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line. The store is detached whether or not the
// command succeeded.
func run(args []string, stdout, stderr io.Writer) int {
	root, a := newRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "tiledoc:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// userErrors are failures caused by the arguments rather than the system.
var userErrors = []error{
	types.ErrDocumentNotFound,
	types.ErrTileNotFound,
	types.ErrUnknownContentType,
	types.ErrInvalidName,
	types.ErrInvalidID,
	types.ErrInvalidConfig,
	types.ErrInvalidSnapshot,
	types.ErrContentTypeMissing,
	errDocumentExists,
	errOperationRefused,
	errUsage,
	clipboard.ErrUnknownFormat,
	clipboard.ErrEmptyPayload,
}

func exitCode(err error) int {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// setup resolves configuration and builds the logger. The store is attached
// lazily by commands that need it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	loadDotEnv()

	configDir, err := paths.ResolveConfigDir(a.configDirFlag)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = configDir

	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	cfg := configFromViper(v)
	if a.debug {
		cfg.LogLevel = types.LogLevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", paths.ConfigFile(configDir), err)
	}
	if cfg.DataDir, err = paths.ResolveDataDir(a.dataDirFlag, cfg.DataDir); err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.cfg = cfg

	if a.log, err = newLogger(cfg.LogLevel, a.debug); err != nil {
		return err
	}
	a.log.Debug("configuration resolved",
		zap.String("configDir", configDir),
		zap.String("dataDir", cfg.DataDir),
		zap.String("logLevel", cfg.LogLevel))
	return nil
}

func (a *app) teardown() error {
	var err error
	if a.store != nil {
		err = a.store.Detach()
		a.store = nil
	}
	// Sync fails on non-file sinks such as a terminal; nothing to report.
	_ = a.log.Sync()
	return err
}

// openStore attaches the document store on first use.
func (a *app) openStore() (*sqlite.Backend, error) {
	if a.store != nil {
		return a.store, nil
	}
	b := sqlite.NewBackend(sqlite.WithLogger(a.log.Named("store")))
	if err := b.Attach(a.cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	a.store = b
	return b, nil
}
