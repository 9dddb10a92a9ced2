package editor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bethropolis/glyph/internal/encoding"
	"github.com/bethropolis/glyph/internal/logger"
)

// doSave writes the whole buffer to path using spec.md §6's atomic save
// protocol: encode back to the detected on-disk format, write a sibling
// temp file, match the original file's permissions, fsync it, rename over
// the target, then fsync the containing directory. No library in the
// retrieval pack offers atomic file replacement — it is inherently an
// os/syscall-level operation — so this is implemented directly on
// package os rather than adapting a teacher collaborator.
func (c *Controller) doSave(path string) {
	content, err := encoding.Encode(c.table.GetRange(0, c.table.Len()), c.detected)
	if err != nil {
		c.setMessage("save failed: %v", err)
		return
	}

	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmpPath := fmt.Sprintf("%s.%d.%d.tmp", path, os.Getpid(), time.Now().UnixNano())
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		c.setMessage("save failed: %v", err)
		return
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmpPath)
		c.setMessage("save failed: %v", err)
		return
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		c.setMessage("save failed: %v", err)
		return
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		c.setMessage("save failed: %v", err)
		return
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if errors.Is(err, os.ErrInvalid) || isCrossDevice(err) {
			if copyErr := copyAndRemove(tmpPath, path, mode); copyErr != nil {
				os.Remove(tmpPath)
				c.setMessage("save failed: %v", copyErr)
				return
			}
		} else {
			os.Remove(tmpPath)
			c.setMessage("save failed: %v", err)
			return
		}
	}

	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		dir.Sync()
		dir.Close()
	}

	c.filename = path
	c.undo.undo = c.undo.undo[:0]
	c.undo.redo = c.undo.redo[:0]
	c.setMessage("Wrote %s", path)
	logger.Infof("editor: saved %s (%d bytes)", path, len(content))
}

// copyAndRemove is the cross-device-rename fallback spec.md §6 names.
func copyAndRemove(tmpPath, path string, mode fs.FileMode) error {
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return err
	}
	return os.Remove(tmpPath)
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err != nil && linkErr.Err.Error() == "invalid cross-device link"
	}
	return false
}

