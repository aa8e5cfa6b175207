package file

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// ValidateByHash compares a file's digest against an expected "algorithm:hex" reference
// and returns the digest it computed in the same form.
func ValidateByHash(fs afero.Fs, path, expected string) (bool, string, error) {
	parts := strings.SplitN(expected, ":", 2)
	if len(parts) != 2 {
		return false, "", fmt.Errorf("hash reference has no algorithm prefix (given: %s)", expected)
	}

	var hasher hash.Hash
	switch parts[0] {
	case "sha256":
		hasher = sha256.New()
	default:
		return false, "", fmt.Errorf("unsupported hash algorithm %q", parts[0])
	}

	actual, err := HashFile(fs, path, hasher)
	if err != nil {
		return false, "", err
	}

	return actual == parts[1], parts[0] + ":" + actual, nil
}

func HashFile(fs afero.Fs, path string, hasher hash.Hash) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("unable to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("unable to hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
