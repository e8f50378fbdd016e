package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"yt-sentiment/internal/domain/entity"
)

// Watchlist is the set of products the worker analyzes on every scheduled run.
//
// Example file:
//
//	products:
//	  - name: Pixel 9
//	    count: 15
//	  - name: Galaxy S24, Ultra
type Watchlist struct {
	Products []WatchedProduct `yaml:"products"`
}

// WatchedProduct is one watchlist entry. Count 0 means the pipeline default.
type WatchedProduct struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// LoadWatchlist reads and validates a YAML watchlist file.
// The path comes from trusted configuration.
func LoadWatchlist(path string) (*Watchlist, error) {
	// #nosec G304 -- path is operator configuration, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}

	if err := wl.Validate(); err != nil {
		return nil, fmt.Errorf("watchlist validation failed: %w", err)
	}

	return &wl, nil
}

// Validate checks every entry and rejects duplicates.
func (w *Watchlist) Validate() error {
	if len(w.Products) == 0 {
		return fmt.Errorf("watchlist has no products")
	}

	seen := make(map[string]struct{}, len(w.Products))
	for i, p := range w.Products {
		if err := entity.ValidateProductName(p.Name); err != nil {
			return fmt.Errorf("products[%d]: %w", i, err)
		}
		if p.Count != 0 {
			if err := entity.ValidateVideoCount(p.Count, MaxVideoSearchCount); err != nil {
				return fmt.Errorf("products[%d]: %w", i, err)
			}
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("products[%d]: duplicate product %q", i, p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	return nil
}
