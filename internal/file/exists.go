package file

import (
	"github.com/spf13/afero"
)

// Exists reports whether path names an existing regular file (directories do not count).
func Exists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil || info == nil {
		return false
	}
	return !info.IsDir()
}
