package config

import (
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// isYAML reports whether path names a YAML descriptor.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// decodeDescriptor decodes the descriptor read from path. JSON descriptors may
// carry comments and trailing commas; they are minimized to standard JSON, which
// YAML accepts as a flow document.
func decodeDescriptor(path string, data []byte, target any) error {
	if !isYAML(path) {
		std, err := hujson.Minimize(data)
		if err != nil {
			return err
		}
		data = std
	}
	return yaml.Unmarshal(data, target)
}
