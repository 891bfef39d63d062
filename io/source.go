package io

import (
	"context"
	"github.com/pkg/errors"
	"path/filepath"
	"snapindex/feature"
	"snapindex/transform"
	"strings"
)

// OpenSource reads a GeoJSON or OSM file into an editable memory source. GeoJSON and OSM data is WGS84 by
// definition, the reference system parameter overrides this for files with projected coordinates.
func OpenSource(ctx context.Context, path string, referenceSystem transform.ReferenceSystem) (*feature.MemorySource, error) {
	if !referenceSystem.IsValid() {
		referenceSystem = transform.WGS84
	}

	var features []*feature.Feature
	var err error

	switch {
	case IsGeoJsonFile(path):
		features, err = ReadGeoJsonFile(path)
	case isOsmFile(path):
		features, err = ReadOsmFile(ctx, path)
	default:
		return nil, errors.Errorf("Unsupported file type of %s, expected .geojson, .json, .osm or .pbf", path)
	}
	if err != nil {
		return nil, err
	}

	return feature.NewMemorySource(referenceSystem, features...), nil
}

func IsGeoJsonFile(path string) bool {
	extension := strings.ToLower(filepath.Ext(path))
	return extension == ".geojson" || extension == ".json"
}
