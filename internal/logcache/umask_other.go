//go:build !unix

package logcache

import "io/fs"

func umask() fs.FileMode { return 0o022 }
