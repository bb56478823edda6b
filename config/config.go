/*
	config package reads and writes the files the user edits: the
	application config holding portal URLs and login data, and the course
	selection listing which courses are synced.
*/

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/mycok/coursesync/session"
)

const (
	appDirName        = "coursesync"
	configFileName    = "config.json"
	selectionFileName = "courses.json"
	ledgerFileName    = "files.json"
)

// URLs holds the portal entry points.
type URLs struct {
	Home  string `json:"home"`
	Login string `json:"login"`
}

// Config holds the persistent application settings.
type Config struct {
	// DefaultPath is the directory course files are downloaded to.
	DefaultPath string              `json:"default_path"`
	URLs        URLs                `json:"urls"`
	LoginData   session.Credentials `json:"logindata"`

	// Minimise suppresses per-file output.
	Minimise bool `json:"minimise"`

	// Ledger is the URI of the download ledger. It defaults to a JSON file
	// next to the config file.
	Ledger string `json:"ledger,omitempty"`
}

// Paths locates the files of the application below a directory.
type Paths struct {
	Dir string
}

// DefaultPaths returns the paths below the user config directory.
func DefaultPaths() (Paths, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("could not find user config directory: %w", err)
	}

	return Paths{Dir: filepath.Join(dir, appDirName)}, nil
}

// Config returns the path of the config file.
func (p Paths) Config() string { return filepath.Join(p.Dir, configFileName) }

// Selection returns the path of the course selection file.
func (p Paths) Selection() string { return filepath.Join(p.Dir, selectionFileName) }

// Ledger returns the path of the default JSON ledger.
func (p Paths) Ledger() string { return filepath.Join(p.Dir, ledgerFileName) }

// Load reads the config at path. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if err := readJSON(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path. The file holds the portal password, so it is
// only readable by its owner.
func Save(path string, cfg *Config) error {
	if err := writeJSON(path, cfg, 0o600); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// Validate reports every setting required for a sync run that is missing.
func (cfg *Config) Validate() error {
	var err error

	if cfg.DefaultPath == "" {
		err = multierror.Append(err, fmt.Errorf("default_path not set"))
	}

	if cfg.URLs.Home == "" {
		err = multierror.Append(err, fmt.Errorf("urls.home not set"))
	}

	if cfg.URLs.Login == "" {
		err = multierror.Append(err, fmt.Errorf("urls.login not set"))
	}

	if cfg.LoginData.Username == "" {
		err = multierror.Append(err, fmt.Errorf("logindata.username not set"))
	}

	return err
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

func writeJSON(path string, v interface{}, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
