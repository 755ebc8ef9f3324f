package localfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
)

// FS implements the router's filesystem operations on the local disk.
type FS struct{}

func New() *FS {
	return &FS{}
}

// ListFiles returns the names of regular files directly under dir, sorted.
func (FS) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (FS) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return nil
}

// Move places src inside dstDir, picking "name (n).ext" when the name is
// taken. It returns the stored file name.
func (FS) Move(src, dstDir string) (string, error) {
	name := uniqueName(dstDir, filepath.Base(src), nil)
	dst := filepath.Join(dstDir, name)

	if err := MoveFile(src, dst); err != nil {
		return "", err
	}
	return name, nil
}

// MoveFile renames src to dst, falling back to copy and delete when the two
// paths are on different devices. An existing dst is not overwritten by the
// fallback.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("rename: %w", err)
	}
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("copy across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// uniqueName returns name, or "base (n)ext" for the smallest n not present
// in dir and not listed in taken.
func uniqueName(dir, name string, taken map[string]struct{}) string {
	free := func(candidate string) bool {
		if _, ok := taken[strings.ToLower(candidate)]; ok {
			return false
		}
		_, err := os.Lstat(filepath.Join(dir, candidate))
		return errors.Is(err, os.ErrNotExist)
	}
	if free(name) {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if free(candidate) {
			return candidate
		}
	}
}
