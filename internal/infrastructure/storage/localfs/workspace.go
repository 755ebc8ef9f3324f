package localfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

const archiveExt = ".zip"

// Workspaces creates per-batch temporary folders under basePath.
type Workspaces struct {
	basePath string
}

func NewWorkspaces(basePath string) (*Workspaces, error) {
	if basePath == "" {
		basePath = os.TempDir()
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Workspaces{basePath: basePath}, nil
}

func (w *Workspaces) Create(batchID string) (ports.Workspace, error) {
	prefix := "organize-"
	if len(batchID) >= 8 {
		prefix += batchID[:8] + "-"
	}
	root, err := os.MkdirTemp(w.basePath, prefix)
	if err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &Workspace{root: root, taken: reservedNames()}, nil
}

type Workspace struct {
	root  string
	taken map[string]struct{}
}

func (w *Workspace) Root() string {
	return w.root
}

// Stage writes body into the workspace root under a sanitized, unique name.
// Bodies longer than limit are removed and reported as domain.ErrFileTooLarge.
func (w *Workspace) Stage(name string, body io.Reader, limit int64) (string, error) {
	stored := uniqueName(w.root, SanitizeFilename(name), w.taken)
	path := filepath.Join(w.root, stored)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	reader := body
	if limit > 0 {
		reader = io.LimitReader(body, limit+1)
	}
	written, copyErr := io.Copy(f, reader)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("close file: %w", closeErr)
	case limit > 0 && written > limit:
		_ = os.Remove(path)
		return "", domain.WrapError(domain.ErrFileTooLarge, "stage "+name, fmt.Errorf("more than %d bytes", limit))
	}

	w.taken[strings.ToLower(stored)] = struct{}{}
	return stored, nil
}

// Cleanup removes the workspace folder and an archive left next to it.
func (w *Workspace) Cleanup() error {
	var errs []error
	if err := os.RemoveAll(w.root); err != nil {
		errs = append(errs, fmt.Errorf("remove workspace: %w", err))
	}
	if err := os.Remove(w.root + archiveExt); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("remove workspace archive: %w", err))
	}
	return errors.Join(errs...)
}

// SanitizeFilename keeps only the base name of an uploaded file, normalized to
// NFC. Names that cannot identify a file become "upload.bin".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := norm.NFC.String(strings.TrimSpace(filepath.Base(name)))
	base = strings.Map(func(r rune) rune {
		if r == 0 || r == '/' {
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "upload.bin"
	}
	return base
}

func reservedNames() map[string]struct{} {
	out := map[string]struct{}{}
	for _, name := range domain.ReservedNames() {
		out[strings.ToLower(name)] = struct{}{}
	}
	return out
}
