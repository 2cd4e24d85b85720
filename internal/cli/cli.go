package cli

import (
	"log/slog"
	"os"

	"github.com/rohansaphal97/rmllib/internal/config"
	"github.com/spf13/cobra"
)

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version     string
	verbose     bool
	silent      bool
	configPath  string
	initialized bool
	rootCmd     *cobra.Command
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version}
	c.setupCommands()
	return c
}

// setupCommands initializes all CLI commands and their configurations.
func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:     "rmllib",
		Short:   "Relational naive Bayes node classifier",
		Version: c.version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.initApp()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		SilenceUsage: true,
	}

	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose/debug output")
	c.rootCmd.PersistentFlags().BoolVarP(&c.silent, "silent", "s", false, "Suppress all logging")
	c.rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to YAML config file")

	c.rootCmd.AddCommand(c.newRunCommand())
	c.rootCmd.AddCommand(c.newEvaluateCommand())
	c.rootCmd.AddCommand(c.newUpCommand())
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	return c.rootCmd.Execute()
}

// initApp initializes logging.
func (c *CLI) initApp() {
	if c.initialized {
		return
	}
	c.initialized = true

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	if c.silent {
		level = slog.Level(100)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// loadConfig returns the file given by --config, or the defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath == "" {
		return config.DefaultConfig(), nil
	}
	slog.Debug("Loading config", "path", c.configPath)
	return config.Load(c.configPath)
}

// modelFlags are the model settings shared by run and evaluate. A flag only
// overrides the config file when it was set on the command line.
type modelFlags struct {
	learn      string
	infer      string
	calibrate  bool
	confidence float64
	smoothing  float64
	symmetric  bool
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.learn, "learn", "independent", "Learn method: independent, relational-iid, relational-joint")
	cmd.Flags().StringVar(&f.infer, "infer", "independent", "Inference method: independent, relational-iid, relational-joint")
	cmd.Flags().BoolVar(&f.calibrate, "calibrate", false, "Shift probabilities to the labeled positive rate")
	cmd.Flags().Float64Var(&f.confidence, "confidence", 1, "Weight of unlabeled beliefs in relational-joint mode")
	cmd.Flags().Float64Var(&f.smoothing, "smoothing", 0, "Additive smoothing for conditional probabilities")
	cmd.Flags().BoolVar(&f.symmetric, "symmetric", false, "Mirror every edge when loading the dataset")
}

func (f *modelFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("learn") {
		cfg.Model.LearnMethod = f.learn
	}
	if flags.Changed("infer") {
		cfg.Model.InferMethod = f.infer
	}
	if flags.Changed("calibrate") {
		cfg.Model.Calibrate = f.calibrate
	}
	if flags.Changed("confidence") {
		cfg.Model.UnlabeledConfidence = f.confidence
	}
	if flags.Changed("smoothing") {
		cfg.Model.Smoothing = f.smoothing
	}
	if flags.Changed("symmetric") {
		cfg.Dataset.Symmetric = f.symmetric
	}
}
