package move

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFile is the name of the manifest at the root of every Move package.
const ManifestFile = "Move.toml"

var ErrManifestNotFound = errors.New("Move.toml not found")

// Manifest is the subset of Move.toml that the publisher needs.
type Manifest struct {
	Package      PackageInfo       `toml:"package"`
	Addresses    map[string]string `toml:"addresses"`
	DevAddresses map[string]string `toml:"dev-addresses"`
}

// PackageInfo is the [package] table of Move.toml.
type PackageInfo struct {
	Name          string `toml:"name"`
	Version       string `toml:"version"`
	UpgradePolicy string `toml:"upgrade_policy"`
}

// ReadManifest reads and parses the Move.toml found in dir.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)

	d, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrManifestNotFound, dir)
		}

		return nil, err
	}

	var m Manifest
	if err = toml.Unmarshal(d, &m); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s: %w", path, err)
	}

	return &m, nil
}

// DeclaresAddress reports whether the manifest declares the named address in its
// [addresses] table. A manifest without an [addresses] table declares nothing.
func (m *Manifest) DeclaresAddress(name string) bool {
	_, ok := m.Addresses[name]
	return ok
}
