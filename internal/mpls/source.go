package mpls

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Source is the filesystem boundary of the parser. Names use the host's path
// conventions.
type Source interface {
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

type osSource struct{}

// OSSource reads playlists from the local filesystem.
func OSSource() Source { return osSource{} }

func (osSource) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (osSource) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

type fsSource struct {
	fsys fs.FS
}

// FSSource adapts an fs.FS (for example fstest.MapFS) to a Source.
func FSSource(fsys fs.FS) Source { return fsSource{fsys: fsys} }

func (s fsSource) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(s.fsys, filepath.ToSlash(name))
}

func (s fsSource) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(s.fsys, filepath.ToSlash(name))
}
