package repo

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/odvcencio/twig/pkg/object"
)

// ErrUnsupportedEntryType is returned when tree building meets a directory
// entry that is neither a regular file nor a directory.
var ErrUnsupportedEntryType = errors.New("unsupported entry type")

// modeFromDirEntry maps a directory entry to its tree mode.
func modeFromDirEntry(d fs.DirEntry) (string, error) {
	t := d.Type()
	switch {
	case t.IsDir():
		return object.TreeModeDir, nil
	case t.IsRegular():
		return object.TreeModeFile, nil
	default:
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedEntryType, d.Name(), describeType(t))
	}
}

func describeType(t fs.FileMode) string {
	switch {
	case t&fs.ModeSymlink != 0:
		return "symlink"
	case t&fs.ModeNamedPipe != 0:
		return "named pipe"
	case t&fs.ModeSocket != 0:
		return "socket"
	case t&fs.ModeDevice != 0:
		return "device"
	default:
		return t.String()
	}
}
