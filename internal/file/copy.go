package file

import (
	"fmt"
	"io"
	"path"

	"github.com/spf13/afero"
)

// CopyDir recursively copies src into dst, preserving file modes.
func CopyDir(fs afero.Fs, src string, dst string) error {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := path.Join(src, entry.Name())
		dstPath := path.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(fs, srcPath, dstPath); err != nil {
				return fmt.Errorf("could not copy dir (%s -> %s): %w", srcPath, dstPath, err)
			}
			continue
		}
		if err := CopyFile(fs, srcPath, dstPath); err != nil {
			return fmt.Errorf("could not copy file (%s -> %s): %w", srcPath, dstPath, err)
		}
	}
	return nil
}

func CopyFile(fs afero.Fs, src, dst string) error {
	srcFd, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer srcFd.Close()

	dstFd, err := fs.Create(dst)
	if err != nil {
		return err
	}
	defer dstFd.Close()

	if _, err := io.Copy(dstFd, srcFd); err != nil {
		return err
	}

	srcInfo, err := fs.Stat(src)
	if err != nil {
		return err
	}
	return fs.Chmod(dst, srcInfo.Mode())
}
