// Package inventory loads the ordered list of database targets for a run.
// Targets are immutable once loaded; every structural problem is fatal before
// any target is processed.
package inventory

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dbguardian/dbguardian/internal/core"
)

type inventoryFile struct {
	Databases []entry `yaml:"databases"`
}

type entry struct {
	Name        string  `yaml:"name"`
	Hostname    string  `yaml:"hostname"`
	Port        int     `yaml:"port"`
	ServiceName string  `yaml:"service_name"`
	Username    string  `yaml:"username"`
	Password    string  `yaml:"password"`
	AuthMode    string  `yaml:"auth_mode"`
	Weight      float64 `yaml:"weight"`
}

func Load(path string) ([]core.Target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]core.Target, error) {
	var f inventoryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	if len(f.Databases) == 0 {
		return nil, fmt.Errorf("inventory: no databases configured")
	}

	targets := make([]core.Target, 0, len(f.Databases))
	seen := make(map[string]struct{}, len(f.Databases))
	for i, e := range f.Databases {
		if e.Name == "" {
			return nil, fmt.Errorf("inventory: database #%d has no name", i+1)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("inventory: duplicate database name %q", e.Name)
		}
		seen[e.Name] = struct{}{}

		if e.Hostname == "" || e.ServiceName == "" {
			return nil, fmt.Errorf("inventory: database %q: hostname and service_name are required", e.Name)
		}
		if e.Port == 0 {
			e.Port = 1521
		}
		if e.Username == "" {
			e.Username = "sys"
		}

		password, err := resolveSecret(e.Password)
		if err != nil {
			return nil, fmt.Errorf("inventory: database %q: %w", e.Name, err)
		}

		mode, err := core.ParseAuthMode(e.AuthMode)
		if err != nil {
			return nil, fmt.Errorf("inventory: database %q: %w", e.Name, err)
		}

		targets = append(targets, core.Target{
			ID:          e.Name,
			Hostname:    e.Hostname,
			Port:        e.Port,
			ServiceName: e.ServiceName,
			Username:    e.Username,
			Password:    password,
			AuthMode:    mode,
			Weight:      e.Weight,
		})
	}
	return targets, nil
}

// resolveSecret expands the ${VAR} credential indirection so passwords stay
// out of the inventory file.
func resolveSecret(v string) (string, error) {
	if !strings.HasPrefix(v, "${") || !strings.HasSuffix(v, "}") {
		return v, nil
	}
	name := v[2 : len(v)-1]
	resolved, ok := os.LookupEnv(name)
	if !ok || resolved == "" {
		return "", fmt.Errorf("environment variable %s not set", name)
	}
	return resolved, nil
}
