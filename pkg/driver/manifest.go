package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project manifest looked up by the CLI.
const ManifestFileName = "olang.yml"

// ErrManifestNotFound reports that no manifest exists in or above a directory.
var ErrManifestNotFound = errors.New("olang.yml not found")

// Manifest represents the parsed contents of olang.yml.
type Manifest struct {
	Path        string `yaml:"-"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Entry       string `yaml:"entry"`
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	manifest.Path = path
	if err := manifest.validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &manifest, nil
}

func (m *Manifest) validate() error {
	if strings.TrimSpace(m.Entry) == "" {
		return errors.New("missing required field 'entry'")
	}
	if filepath.IsAbs(m.Entry) {
		return fmt.Errorf("entry %q must be relative to the manifest directory", m.Entry)
	}
	return nil
}

// EntryPath resolves the entry script relative to the manifest's directory.
func (m *Manifest) EntryPath() string {
	return filepath.Join(filepath.Dir(m.Path), filepath.FromSlash(m.Entry))
}

// FindManifest walks from dir toward the filesystem root looking for olang.yml.
func FindManifest(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(current, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrManifestNotFound
		}
		current = parent
	}
}
