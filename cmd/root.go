package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"sr.ht/~erock/pgit/internal/config"
	"sr.ht/~erock/pgit/internal/site"
	"sr.ht/~erock/pgit/internal/vcs"
)

// errLogged is returned once a failure has been reported by the logger.
var errLogged = errors.New("pgit failed")

func newRootCmd(fs afero.Fs) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "pgit [-c cachefile | -l commits] [flags] repodir",
		Short: "Generate static pages for a git repository",
		Long: `pgit renders the log, commits, files and references of a git repository
as static HTML pages. With a cache file, only commits that are new since the
previous run are processed.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.Defaults(v)
			v.SetEnvPrefix(config.EnvPrefix)
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config %s: %w", cfgFile, err)
				}
			}

			cfg, err := config.Load(v, fs, args[0])
			if err != nil {
				return err
			}
			// past this point failures are not usage errors
			cmd.SilenceUsage = true

			logger, err := newLogger(cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := run(cfg, fs, logger); err != nil {
				logger.Errorf("%s: %s", cfg.RepoPath, err)
				return errLogged
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP(config.KeyCache, "c", "", "cache file for incremental log generation")
	flags.IntP(config.KeyLogLimit, "l", 0, "maximum number of commits shown in the log")
	flags.StringP(config.KeyOut, "o", ".", "output directory")
	flags.String(config.KeyLabel, "", "pretty name for the repo, default is the repo directory without .git")
	flags.String(config.KeyDesc, "", "description for repo, default is the description file")
	flags.String(config.KeyCloneURL, "", "git clone URL, default is the url file")
	flags.String(config.KeyTheme, "dracula", "chroma theme used for syntax highlighting")
	flags.Bool(config.KeyUnsafeHTML, false, "keep raw HTML in markdown files, sanitized")
	flags.BoolP(config.KeyVerbose, "v", false, "verbose logging")
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	cmd.MarkFlagsMutuallyExclusive(config.KeyCache, config.KeyLogLimit)
	cmd.AddCommand(newIndexCmd(fs))

	return cmd
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var lg *zap.Logger
	var err error
	if verbose {
		lg, err = zap.NewDevelopment()
	} else {
		lg, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return lg.Sugar(), nil
}

func run(cfg *config.Config, fs afero.Fs, logger *zap.SugaredLogger) error {
	repo, err := vcs.Open(cfg.RepoPath)
	if err != nil {
		return err
	}
	g, err := site.New(cfg, repo, fs, logger)
	if err != nil {
		return err
	}
	return g.Run()
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		if !errors.Is(err, errLogged) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
