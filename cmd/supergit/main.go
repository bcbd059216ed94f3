package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"supergit/internal/config"
	"supergit/internal/gateway"
	"supergit/internal/logging"
	"supergit/internal/organizer"
)

var (
	// Flags
	addPath    string
	instruct   string
	doInit     bool
	doReindex  bool
	rootDir    string
	configPath string
	verbose    bool

	// Logger
	logger *zap.Logger
)

// rootCmd is the whole surface: one command, four operations selected by flags.
var rootCmd = &cobra.Command{
	Use:   "supergit [query]",
	Short: "Supergit: An intelligent file organizer.",
	Long: `Supergit delegates file organization to a language model.

Every directory in the tree carries a .supergit.yaml sidecar listing its
entries plus a free-form description. Adding a file sends its content and
the aggregated sidecars to the model, which picks the target directory and
filename; the move is committed to git so every placement stays reversible.

Examples:
  supergit --add report.pdf                 # place a file in the current tree
  supergit -a notes.txt -i "meeting notes"  # place with an extra instruction
  supergit --init --dir ~/tree              # ask the model to describe dirs
  supergit --reindex                        # resync sidecar entries with disk
  supergit --dir ~/tree "tax documents"     # find files by natural language`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&addPath, "add", "a", "", "Path to the file to add")
	rootCmd.Flags().StringVarP(&instruct, "instruct", "i", "", "Additional instruction for the file")
	rootCmd.Flags().BoolVar(&doInit, "init", false, "Initialize the supergit directories")
	rootCmd.Flags().BoolVar(&doReindex, "reindex", false, "Reindex the supergit directories")
	rootCmd.Flags().StringVar(&rootDir, "dir", ".", "Directory to use as root or to query")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default: <dir>/.supergit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging; echoes raw model replies")
	rootCmd.MarkFlagsMutuallyExclusive("add", "init", "reindex")
}

func run(cmd *cobra.Command, args []string) error {
	// No action selected: show help, like the bare invocation of any organizer.
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	if addPath == "" && !doInit && !doReindex && query == "" {
		return cmd.Help()
	}

	// .env first so the credential and override lookups below see it.
	_ = godotenv.Load()

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath(rootDir)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(rootDir); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()
	if err := logging.InitJournal(); err != nil {
		logger.Warn("Journal disabled", zap.Error(err))
	}
	defer logging.CloseJournal()

	client, err := gateway.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	org := organizer.New(client, rootDir, cfg.Commit)
	logger.Debug("Organizer ready",
		zap.String("root", rootDir),
		zap.String("model", client.Model()),
		zap.String("op_id", org.OpID()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetLLMTimeout())
	defer cancel()

	// Graceful shutdown: a signal cancels the in-flight model call.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	switch {
	case addPath != "":
		return runAdd(ctx, org)
	case doInit:
		return runInit(ctx, org)
	case doReindex:
		return runReindex(org)
	default:
		if !cmd.Flags().Changed("dir") {
			return errors.New("please specify the directory to query using --dir")
		}
		return runQuery(ctx, org, query)
	}
}

// runAdd asks the model where the file belongs, moves it there, and commits.
func runAdd(ctx context.Context, org *organizer.Organizer) error {
	successColor := color.New(color.FgHiGreen)
	dimColor := color.New(color.FgHiBlack)

	journal := org.Journal()
	journal.OperationStart("add", addPath)
	start := time.Now()

	s := newSpinner(" Choosing a directory...")
	s.Start()
	dec, err := org.Analyze(ctx, addPath, instruct)
	s.Stop()
	if err != nil {
		journal.OperationEnd("add", time.Since(start), false, err.Error())
		return err
	}
	if verbose {
		fmt.Println(org.LastReply())
	}

	target, err := org.Place(addPath, dec)
	if err != nil {
		journal.OperationEnd("add", time.Since(start), false, err.Error())
		return err
	}
	journal.OperationEnd("add", time.Since(start), true, "")

	successColor.Printf("File placed in %s as %s and committed.\n", filepath.Join(rootDir, target), dec.Filename)
	if dec.Justification != "" {
		dimColor.Printf("  %s\n", dec.Justification)
	}
	return nil
}

// runInit asks the model to describe every directory and writes the sidecars.
func runInit(ctx context.Context, org *organizer.Organizer) error {
	successColor := color.New(color.FgHiGreen)
	dimColor := color.New(color.FgHiBlack)

	journal := org.Journal()
	journal.OperationStart("init", rootDir)
	start := time.Now()

	s := newSpinner(" Describing directories...")
	s.Start()
	written, err := org.Initialize(ctx)
	s.Stop()
	if err != nil {
		journal.OperationEnd("init", time.Since(start), false, err.Error())
		return err
	}
	if verbose {
		fmt.Println(org.LastReply())
	}
	journal.OperationEnd("init", time.Since(start), true, "")

	successColor.Println("Initialized supergit directories.")
	dimColor.Printf("  %d sidecars written\n", written)
	return nil
}

// runReindex resyncs sidecar entries with the directory listings. Local IO
// only, no model call.
func runReindex(org *organizer.Organizer) error {
	successColor := color.New(color.FgHiGreen)
	dimColor := color.New(color.FgHiBlack)

	journal := org.Journal()
	journal.OperationStart("reindex", rootDir)
	start := time.Now()

	count, err := org.Reindex()
	if err != nil {
		journal.OperationEnd("reindex", time.Since(start), false, err.Error())
		return err
	}
	journal.OperationEnd("reindex", time.Since(start), true, "")

	successColor.Println("Reindexed supergit directories.")
	dimColor.Printf("  %d sidecars refreshed\n", count)
	return nil
}

// runQuery sends file previews plus the query and prints the reply verbatim.
func runQuery(ctx context.Context, org *organizer.Organizer, query string) error {
	journal := org.Journal()
	journal.OperationStart("query", query)
	start := time.Now()

	s := newSpinner(" Searching the tree...")
	s.Start()
	result, err := org.Query(ctx, rootDir, query)
	s.Stop()
	if err != nil {
		journal.OperationEnd("query", time.Since(start), false, err.Error())
		return err
	}
	journal.OperationEnd("query", time.Since(start), true, "")

	fmt.Printf("\n%s\n", result)
	return nil
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = suffix
	s.Color("cyan")
	s.Writer = os.Stderr
	return s
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
