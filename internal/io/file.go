package ioutils

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// DeleteFile removes a file. A file that is already gone is not an error, so
// a folder pass can be re-run after an interruption.
//
// Example:
//
//	err := DeleteFile(ctx, fs, "/music/Pub/Album/Full - Album.mp3")
func DeleteFile(ctx context.Context, fs afero.Fs, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	playlistContent := []byte("#EXTM3U\n...")
//	err := WriteFile(ctx, fs, "/music/Pub/Album/Album.m3u", playlistContent)
func WriteFile(ctx context.Context, fs afero.Fs, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.WithStack(afero.WriteFile(fs, path, data, 0o644))
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(fs afero.Fs, path string) error {
	return errors.WithStack(fs.MkdirAll(path, 0o755))
}
