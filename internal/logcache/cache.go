// Package logcache stores the log rows rendered by a previous run so the
// next run only renders commits that are new since then.
//
// The file starts with the id of the head commit it was written for,
// followed by a newline and the rendered rows, newest first:
//
//	<commit id>\n
//	<rows...>
//
// A cache is never edited in place. A new one is written to a temporary
// file next to it and renamed over the old one by Commit.
package logcache

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// ErrNoID is returned when an existing cache file has no id line.
var ErrNoID = errors.New("no object id")

// Cache is the previous cache (if any) and the new one being written.
type Cache struct {
	fs   afero.Fs
	path string

	// LastID is the head the previous cache was written for; empty when
	// there was no previous cache.
	LastID string
	prev   afero.File
	rest   *bufio.Reader

	tmp afero.File
}

// Open reads the id line of the cache at path. A missing file is not an
// error; a file without a valid id is.
func Open(fs afero.Fs, path string) (*Cache, error) {
	c := &Cache{fs: fs, path: path}

	f, err := fs.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	r := bufio.NewReader(f)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}
	if line == "" {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNoID)
	}
	id := strings.TrimSuffix(line, "\n")
	if !ValidID(id) {
		_ = f.Close()
		return nil, fmt.Errorf("%s: invalid object id %q", path, id)
	}

	c.LastID = id
	c.prev = f
	c.rest = r
	return c, nil
}

// ValidID reports whether id looks like a full SHA-1 or SHA-256 object id.
func ValidID(id string) bool {
	if len(id) != 40 && len(id) != 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// Seen reports whether id is the head the previous cache was written for.
// Everything reachable from it is already in the cached rows.
func (c *Cache) Seen(id string) bool {
	return c.LastID != "" && strings.EqualFold(c.LastID, id)
}

// Begin starts the new cache for head in a temporary file.
func (c *Cache) Begin(head string) error {
	tmp, err := afero.TempFile(c.fs, filepath.Dir(c.path), ".cache-")
	if err != nil {
		return fmt.Errorf("create temporary cache: %w", err)
	}
	c.tmp = tmp
	if _, err := io.WriteString(tmp, head+"\n"); err != nil {
		return fmt.Errorf("write temporary cache: %w", err)
	}
	return nil
}

// WriteRow appends a newly rendered row to the new cache.
func (c *Cache) WriteRow(row []byte) error {
	if _, err := c.tmp.Write(row); err != nil {
		return fmt.Errorf("write temporary cache: %w", err)
	}
	return nil
}

// CarryForward copies the rows of the previous cache to w and to the new
// cache, after any rows written with WriteRow.
func (c *Cache) CarryForward(w io.Writer) error {
	if c.rest == nil {
		return nil
	}
	if _, err := io.Copy(io.MultiWriter(w, c.tmp), c.rest); err != nil {
		return fmt.Errorf("copy cached rows: %w", err)
	}
	return nil
}

// Commit makes the new cache the active one. It must only be called once
// everything built from it has been written.
func (c *Cache) Commit() error {
	err := c.closeFiles()
	if err != nil {
		return multierr.Append(err, c.removeTmp())
	}
	if err := c.fs.Rename(c.tmp.Name(), c.path); err != nil {
		return multierr.Append(fmt.Errorf("rename %s to %s: %w", c.tmp.Name(), c.path, err), c.removeTmp())
	}
	if err := c.fs.Chmod(c.path, 0o666&^umask()); err != nil {
		return fmt.Errorf("chmod %s: %w", c.path, err)
	}
	c.tmp = nil
	return nil
}

// Abort discards the new cache and leaves the previous one untouched.
func (c *Cache) Abort() error {
	return multierr.Append(c.closeFiles(), c.removeTmp())
}

func (c *Cache) closeFiles() (err error) {
	if c.prev != nil {
		err = multierr.Append(err, c.prev.Close())
		c.prev, c.rest = nil, nil
	}
	if c.tmp != nil {
		// closing twice is harmless for os and mem files; only the
		// first close can report a flush error
		if cerr := c.tmp.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	return err
}

func (c *Cache) removeTmp() error {
	if c.tmp == nil {
		return nil
	}
	name := c.tmp.Name()
	c.tmp = nil
	if err := c.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
