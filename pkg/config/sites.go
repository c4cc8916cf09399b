package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SiteCatalog lists the sites the dashboard knows about.
type SiteCatalog struct {
	Sites []SiteEntry `yaml:"sites" json:"sites"`
}

type SiteEntry struct {
	Name        string `yaml:"name" json:"name"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Default     bool   `yaml:"default" json:"default"`
}

// LoadSiteCatalog reads a YAML catalog. An empty path or a missing file
// yields an empty catalog.
func LoadSiteCatalog(path string) (*SiteCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return &SiteCatalog{}, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &SiteCatalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read site catalog: %w", err)
	}

	var catalog SiteCatalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return nil, fmt.Errorf("parse site catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(catalog.Sites))
	sites := catalog.Sites[:0]
	for _, site := range catalog.Sites {
		site.Name = strings.TrimSpace(site.Name)
		if site.Name == "" {
			return nil, fmt.Errorf("parse site catalog: site without name")
		}
		if _, dup := seen[site.Name]; dup {
			continue
		}
		seen[site.Name] = struct{}{}
		if strings.TrimSpace(site.DisplayName) == "" {
			site.DisplayName = site.Name
		}
		sites = append(sites, site)
	}
	catalog.Sites = sites

	return &catalog, nil
}

// DefaultSelection returns the sites marked default, or every site when none is.
func (c *SiteCatalog) DefaultSelection() []string {
	if c == nil {
		return nil
	}
	selected := make([]string, 0, len(c.Sites))
	for _, site := range c.Sites {
		if site.Default {
			selected = append(selected, site.Name)
		}
	}
	if len(selected) > 0 {
		return selected
	}
	return c.Names()
}

func (c *SiteCatalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Sites))
	for _, site := range c.Sites {
		names = append(names, site.Name)
	}
	return names
}
