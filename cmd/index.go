package cmd

import (
	"errors"
	"fmt"
	"html/template"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sr.ht/~erock/pgit/internal/config"
	"sr.ht/~erock/pgit/internal/markdown"
	"sr.ht/~erock/pgit/internal/site"
	"sr.ht/~erock/pgit/internal/vcs"
)

func newIndexCmd(fs afero.Fs) *cobra.Command {
	var (
		title   string
		readme  string
		unsafe  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "index [flags] repodir...",
		Short: "Write an HTML index of several repositories to stdout",
		Long: `index lists each repository with its description, owner and the time of
its last commit. Names link to the repository's pages, expected in a
directory of the same name next to the index. Repositories without commits
are left out.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			data := &site.IndexPageData{Title: title}
			failed := false
			for _, dir := range args {
				r, err := indexRepo(fs, dir)
				if err != nil {
					logger.Errorf("%s: %s", dir, err)
					failed = true
					continue
				}
				if r == nil {
					logger.Debugf("%s: no commits, skipping", dir)
					continue
				}
				data.Repos = append(data.Repos, r)
			}

			if data.Readme, err = indexReadme(fs, readme, unsafe, logger); err != nil {
				logger.Errorf("%s: %s", readme, err)
				failed = true
			}
			if err := site.WriteIndex(cmd.OutOrStdout(), data); err != nil {
				logger.Error(err)
				return errLogged
			}
			if failed {
				return errLogged
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&title, "title", "Repositories", "page title")
	flags.StringVar(&readme, "readme", "README.md", "markdown file shown below the list, skipped when missing")
	flags.BoolVar(&unsafe, config.KeyUnsafeHTML, false, "keep raw HTML in the readme, sanitized")
	flags.BoolVarP(&verbose, config.KeyVerbose, "v", false, "verbose logging")
	return cmd
}

func indexRepo(fs afero.Fs, dir string) (*site.IndexRepo, error) {
	meta, err := config.ReadMeta(fs, dir)
	if err != nil {
		return nil, err
	}
	repo, err := vcs.Open(dir)
	if err != nil {
		return nil, err
	}
	return site.NewIndexRepo(meta, repo)
}

func indexReadme(fs afero.Fs, name string, unsafe bool, logger *zap.SugaredLogger) (template.HTML, error) {
	if name == "" {
		return "", nil
	}
	b, err := afero.ReadFile(fs, name)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debugf("%s: not found, no readme section", name)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read readme: %w", err)
	}
	out, _, err := markdown.New(unsafe).Render(b)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}
