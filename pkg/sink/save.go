package sink

import (
	"os"
	"path/filepath"

	apperr "github.com/matzehuels/mondrian/pkg/errors"
)

// Save writes data to path atomically: it writes a temporary file in the
// same directory and renames it over path. Missing parent directories are
// created. Failures are reported as ErrCodeWriteFailed and are not retried.
func Save(path string, data []byte) error {
	if err := apperr.ValidateOutputPath(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperr.Wrap(apperr.ErrCodeWriteFailed, err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".mondrian-*")
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeWriteFailed, err, "write %s", path)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return apperr.Wrap(apperr.ErrCodeWriteFailed, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return apperr.Wrap(apperr.ErrCodeWriteFailed, err, "write %s", path)
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return apperr.Wrap(apperr.ErrCodeWriteFailed, err, "write %s", path)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return apperr.Wrap(apperr.ErrCodeWriteFailed, err, "write %s", path)
	}
	return nil
}
