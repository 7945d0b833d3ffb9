package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
)

// Site is the parsed site configuration exposed to templates as "site".
type Site map[string]any

// LoadSite reads the YAML site configuration. ${VAR} references are expanded
// from the environment before parsing. Any failure is a fatal config error.
func LoadSite(path string) (Site, error) {
	// #nosec G304 - path comes from CONFIG_FILE or --config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perrors.ConfigNotFound(path)
		}
		return nil, perrors.ConfigLoadFailed(path, err)
	}

	var site Site
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &site); err != nil {
		return nil, perrors.ConfigLoadFailed(path, fmt.Errorf("parse yaml: %w", err))
	}
	if site == nil {
		site = Site{}
	}
	return site, nil
}

// String returns a top-level string value, or "" when missing.
func (s Site) String(key string) string {
	v, ok := s[key].(string)
	if !ok {
		return ""
	}
	return v
}
