// Package config builds the validated run configuration from flags,
// environment, an optional config file and the repository itself.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/styles"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Keys shared by flags, environment variables and config files.
const (
	KeyCache      = "cache"
	KeyLogLimit   = "log-limit"
	KeyOut        = "out"
	KeyLabel      = "label"
	KeyDesc       = "desc"
	KeyCloneURL   = "clone-url"
	KeyTheme      = "theme"
	KeyUnsafeHTML = "unsafe-html"
	KeyVerbose    = "verbose"
)

// EnvPrefix is prepended to upper-cased keys to form environment variables.
const EnvPrefix = "PGIT"

var (
	ErrCacheAndLimit = errors.New("a cache file and a log limit cannot be used together")
	ErrLogLimit      = errors.New("log limit must be a positive number")
)

type Config struct {
	// abs path to the git repo
	RepoPath string
	// abs path pages are written below
	OutDir string

	// CacheFile enables incremental log generation when set.
	CacheFile string
	// MaxCommits limits the rows shown in the log, 0 is no limit.
	MaxCommits int

	// pretty name for the repo
	Label string
	// description of repo used in the header of site
	Desc     string
	CloneURL string

	// chroma style
	Theme      string
	UnsafeHTML bool
	Verbose    bool
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault(KeyOut, ".")
	v.SetDefault(KeyTheme, "dracula")
}

// Load reads the configuration for the repository at repoPath. Values not
// set in v are taken from the repository's metadata files.
func Load(v *viper.Viper, fs afero.Fs, repoPath string) (*Config, error) {
	repoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path: %w", err)
	}
	out, err := filepath.Abs(v.GetString(KeyOut))
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	cfg := &Config{
		RepoPath:   repoPath,
		OutDir:     out,
		CacheFile:  v.GetString(KeyCache),
		MaxCommits: v.GetInt(KeyLogLimit),
		Label:      v.GetString(KeyLabel),
		Desc:       v.GetString(KeyDesc),
		CloneURL:   v.GetString(KeyCloneURL),
		Theme:      v.GetString(KeyTheme),
		UnsafeHTML: v.GetBool(KeyUnsafeHTML),
		Verbose:    v.GetBool(KeyVerbose),
	}

	if v.IsSet(KeyLogLimit) && cfg.MaxCommits <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrLogLimit, v.GetString(KeyLogLimit))
	}

	if cfg.Label == "" {
		cfg.Label = repoName(repoPath)
	}
	if cfg.Desc == "" {
		if cfg.Desc, err = readMeta(fs, repoPath, "description"); err != nil {
			return nil, err
		}
	}
	if cfg.CloneURL == "" {
		if cfg.CloneURL, err = readMeta(fs, repoPath, "url"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that do not depend on where they came from.
func (c *Config) Validate() error {
	if c.CacheFile != "" && c.MaxCommits > 0 {
		return ErrCacheAndLimit
	}
	if c.MaxCommits < 0 {
		return ErrLogLimit
	}
	if _, ok := styles.Registry[c.Theme]; !ok {
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	return nil
}

// Meta is what a repository directory says about itself.
type Meta struct {
	Name     string
	Desc     string
	Owner    string
	CloneURL string
}

// ReadMeta reads the name of the repository at repoPath and its
// description, owner and url files.
func ReadMeta(fs afero.Fs, repoPath string) (*Meta, error) {
	repoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path: %w", err)
	}
	m := &Meta{Name: repoName(repoPath)}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"description", &m.Desc},
		{"owner", &m.Owner},
		{"url", &m.CloneURL},
	} {
		if *f.dst, err = readMeta(fs, repoPath, f.name); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// repoName is the directory name without a .git suffix.
func repoName(root string) string {
	_, file := filepath.Split(root)
	return strings.TrimSuffix(file, ".git")
}

// readMeta returns the first line of name in a bare repository or below
// .git in a working tree. A missing file is not an error.
func readMeta(fs afero.Fs, repoPath, name string) (string, error) {
	for _, p := range []string{
		filepath.Join(repoPath, name),
		filepath.Join(repoPath, ".git", name),
	} {
		f, err := fs.Open(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", p, err)
		}
		line, err := firstLine(f)
		_ = f.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", p, err)
		}
		return line, nil
	}
	return "", nil
}

func firstLine(f afero.File) (string, error) {
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", sc.Err()
}
