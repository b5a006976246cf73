package disc

import (
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/text/cases"
)

// Kind names the disc format a file belongs to.
type Kind string

const (
	KindBluray Kind = "Blu-ray"
	KindDVD    Kind = "DVD"
)

var (
	// ErrUnsupportedFile is returned for files that are neither .mpls nor .ifo.
	ErrUnsupportedFile = errors.New("unsupported file type (expected .mpls or .ifo)")
	// ErrMenuIFO is returned for VIDEO_TS.IFO, which holds the disc menu
	// rather than a title set.
	ErrMenuIFO = errors.New("VIDEO_TS.IFO is the disc menu; choose a title set such as VTS_01_0.IFO")
	// ErrNoDiscFiles is returned when a directory holds no known chapter source.
	ErrNoDiscFiles = errors.New("no Blu-ray playlist or DVD title set found")
)

const menuIFO = "video_ts.ifo"

// Classify returns the format of path based on its extension.
func Classify(path string) (Kind, error) {
	fold := cases.Fold()
	name := fold.String(filepath.Base(path))
	switch fold.String(filepath.Ext(name)) {
	case ".mpls":
		return KindBluray, nil
	case ".ifo":
		if name == menuIFO {
			return "", fmt.Errorf("%s: %w", path, ErrMenuIFO)
		}
		return KindDVD, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
}
