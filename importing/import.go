package importing

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"snapindex/feature"
	"snapindex/io"
	"snapindex/storage"
	"snapindex/transform"
	"time"
)

// Import reads the GeoJSON or OSM input file and stores all its features in the SQLite database. Features without
// geometry are left out. The import is atomic: when a feature can't be stored, e.g. because its ID already exists in
// the database, nothing is stored.
func Import(ctx context.Context, inputFile string, databaseFile string, referenceSystem transform.ReferenceSystem) (int, error) {
	sigolo.Debugf("Start reading input file %s", inputFile)
	importStartTime := time.Now()

	source, err := io.OpenSource(ctx, inputFile, referenceSystem)
	if err != nil {
		return 0, errors.Wrapf(err, "Unable to read input file %s", inputFile)
	}

	var features []*feature.Feature
	withoutGeometry := 0
	err = source.Features(func(f *feature.Feature) bool {
		if f.Geometry == nil {
			withoutGeometry++
			return true
		}
		features = append(features, f)
		return true
	})
	if err != nil {
		return 0, err
	}
	sigolo.Debugf("Read %d features (%d without geometry) from %s in %s", len(features), withoutGeometry, inputFile, time.Since(importStartTime))

	database, err := storage.OpenSqliteSource(ctx, databaseFile, source.ReferenceSystem())
	if err != nil {
		return 0, err
	}
	defer database.Close()

	err = database.Import(ctx, features)
	if err != nil {
		return 0, errors.Wrapf(err, "Unable to import features of %s into %s", inputFile, databaseFile)
	}

	sigolo.Infof("Imported %d features from %s into %s in %s", len(features), inputFile, databaseFile, time.Since(importStartTime))
	return len(features), nil
}
