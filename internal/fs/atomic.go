package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// TempSuffix is appended to the target path while it is being written.
const TempSuffix = ".tmp"

// WriteFileAtomic creates path by calling write on a temporary sibling file,
// syncing it and renaming it over path. On any failure the temporary file is
// removed and path is left untouched. It returns the bytes written.
func WriteFileAtomic(fsys FileSystem, path string, perm os.FileMode, write func(io.Writer) (int64, error)) (int64, error) {
	if fsys == nil {
		fsys = Default
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	tmp := path + TempSuffix
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, err
	}

	n, err := write(f)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = fsys.Rename(tmp, path)
	}
	if err != nil {
		if rerr := fsys.Remove(tmp); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = errors.Join(err, rerr)
		}
		return n, err
	}
	return n, nil
}
