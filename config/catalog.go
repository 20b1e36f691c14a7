package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/synanno/maskdraw"
)

type catalogFile struct {
	Images []maskdraw.Target `yaml:"images"`
}

// ParseCatalog decodes a YAML image catalog.
func ParseCatalog(r io.Reader) ([]maskdraw.Target, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: catalog: %w", err)
	}

	seen := make(map[int]bool, len(f.Images))
	for i, t := range f.Images {
		if seen[t.ImageID] {
			return nil, fmt.Errorf("%w: catalog entry %d: duplicate image_id %d", ErrInvalid, i, t.ImageID)
		}
		seen[t.ImageID] = true
		for _, v := range t.BoundingBox {
			if v < 0 {
				return nil, fmt.Errorf("%w: catalog entry %d: negative bounding box", ErrInvalid, i)
			}
		}
	}
	return f.Images, nil
}

// LoadCatalog reads the catalog file at path.
func LoadCatalog(path string) ([]maskdraw.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}
