package disc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
)

// probeOrder lists the main-title candidates tried when a disc root is given,
// relative to the root.
var probeOrder = [][]string{
	{"BDMV", "PLAYLIST", "00000.mpls"},
	{"BDMV", "PLAYLIST", "00001.mpls"},
	{"VIDEO_TS", "VTS_01_0.IFO"},
	{"VIDEO_TS", "VIDEO_TS.IFO"},
}

var titleSetIFO = regexp.MustCompile(`(?i)^VTS_\d{2}_0\.IFO$`)

// File is one chapter source found on a disc tree.
type File struct {
	Path string
	Kind Kind
}

// Resolve turns path into a chapter source. Files are classified by
// extension; directories are treated as a disc root and probed in order.
func Resolve(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		kind, err := Classify(path)
		if err != nil {
			return File{}, err
		}
		return File{Path: path, Kind: kind}, nil
	}

	for _, parts := range probeOrder {
		candidate, ok := lookup(path, parts...)
		if !ok {
			continue
		}
		kind, err := Classify(candidate)
		if err != nil {
			return File{}, err
		}
		return File{Path: candidate, Kind: kind}, nil
	}
	return File{}, fmt.Errorf("%s: %w", path, ErrNoDiscFiles)
}

// List returns every playlist under BDMV/PLAYLIST and every title set IFO
// under VIDEO_TS, sorted by path. A file path yields itself.
func List(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		kind, err := Classify(root)
		if err != nil {
			return nil, err
		}
		return []File{{Path: root, Kind: kind}}, nil
	}

	var files []File
	if dir, ok := lookup(root, "BDMV", "PLAYLIST"); ok {
		found, err := listDir(dir, KindBluray, func(name string) bool {
			return cases.Fold().String(filepath.Ext(name)) == ".mpls"
		})
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if dir, ok := lookup(root, "VIDEO_TS"); ok {
		found, err := listDir(dir, KindDVD, titleSetIFO.MatchString)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoDiscFiles)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func listDir(dir string, kind Kind, match func(string) bool) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []File
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		out = append(out, File{Path: filepath.Join(dir, entry.Name()), Kind: kind})
	}
	return out, nil
}

// lookup joins parts onto base, matching each component case-insensitively
// when the exact name does not exist.
func lookup(base string, parts ...string) (string, bool) {
	current := base
	for _, part := range parts {
		next, ok := child(current, part)
		if !ok {
			return "", false
		}
		current = next
	}
	return current, true
}

func child(dir, name string) (string, bool) {
	exact := filepath.Join(dir, name)
	if _, err := os.Stat(exact); err == nil {
		return exact, true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	fold := cases.Fold()
	want := fold.String(name)
	for _, entry := range entries {
		if fold.String(entry.Name()) == want {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}
