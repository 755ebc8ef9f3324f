package zipfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

const archiveExt = ".zip"

type Archiver struct{}

func New() *Archiver {
	return &Archiver{}
}

// Archive writes folder+".zip" holding every regular file below folder,
// stored under its slash-separated path relative to folder and deflated.
func (a *Archiver) Archive(ctx context.Context, folder string) (*domain.ArchiveRef, error) {
	folder, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve archive folder: %w", err)
	}
	path := strings.TrimRight(folder, string(os.PathSeparator)) + archiveExt

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	if err := writeArchive(ctx, out, folder, path); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return nil, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close archive: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	return &domain.ArchiveRef{
		Name: filepath.Base(path),
		Path: path,
		Size: info.Size(),
	}, nil
}

// writeArchive never includes the archive itself, which sits inside folder
// when folder is the filesystem root.
func writeArchive(ctx context.Context, out io.Writer, folder, self string) error {
	zw := zip.NewWriter(out)

	err := filepath.WalkDir(folder, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() || path == self {
			return nil
		}

		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("write archive entries: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
