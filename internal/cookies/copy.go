package cookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// withSnapshot copies the SQLite file at src (plus any -wal and -shm
// companions) into a scratch directory and calls fn with the copy's path.
// A running browser keeps its cookie database locked; reading a copy
// avoids contending with it. The scratch directory is removed afterwards.
func withSnapshot(src string, fn func(copied string) error) error {
	dir, err := os.MkdirTemp("", "ytupload-cookies-*")
	if err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(src + suffix); err == nil {
			// Missing journal pages only lose the newest writes.
			_ = copyFile(src+suffix, dst+suffix)
		}
	}
	return fn(dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
