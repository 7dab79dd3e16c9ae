// Package jsonutils holds JSON file helpers.
package jsonutils

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteFile marshals data into pretty JSON and writes it at path. The file is written to a
// temporary sibling first and renamed into place so readers never observe a partial file.
func WriteFile(path string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // the rename below leaves nothing to remove on success

	if _, err = tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
