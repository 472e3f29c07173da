// Package importer reads product records from JSON or YAML files.
//
// Both formats use the JSON field names of models.Product. YAML documents are
// converted to JSON before decoding so the two formats cannot drift apart.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"katalog/internal/models"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Load reads every product record in the file at path. The format is chosen by
// extension: .json, .yaml or .yml. The file must hold a list of records.
func Load(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON(data, path)
	case ".yaml", ".yml":
		var doc []any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
		return decodeJSON(converted, path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

func decodeJSON(data []byte, path string) ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return products, nil
}
