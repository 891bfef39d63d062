package importing

import (
	"context"
	"github.com/paulmach/orb"
	"os"
	"path/filepath"
	"snapindex/feature"
	"snapindex/storage"
	"snapindex/transform"
	"snapindex/util"
	"testing"
)

const testGeoJson = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "id": 2, "geometry": {"type": "LineString", "coordinates": [[0, 0], [10, 0]]}, "properties": {"name": "road"}},
	{"type": "Feature", "id": 5, "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {}},
	{"type": "Feature", "id": 6, "geometry": null, "properties": {}}
]}`

func writeInputFile(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0644)
	util.AssertNil(t, err)
	return path
}

func TestImport(t *testing.T) {
	// Arrange
	inputFile := writeInputFile(t, "input.geojson", testGeoJson)
	databaseFile := filepath.Join(t.TempDir(), "features.db")

	// Act
	count, err := Import(context.Background(), inputFile, databaseFile, "")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 2, count)

	database, err := storage.OpenSqliteSource(context.Background(), databaseFile, "")
	util.AssertNil(t, err)
	defer database.Close()

	util.AssertEqual(t, transform.WGS84, database.ReferenceSystem())
	util.AssertEqual(t, 2, database.Count())

	f, err := database.Feature(2)
	util.AssertNil(t, err)
	util.AssertTrue(t, orb.Equal(orb.LineString{{0, 0}, {10, 0}}, f.Geometry))
	util.AssertEqual(t, "road", f.Properties["name"])

	_, err = database.Feature(6)
	util.AssertErrorIs(t, feature.ErrFeatureNotFound, err)
}

func TestImport_projectedReferenceSystem(t *testing.T) {
	// Arrange
	inputFile := writeInputFile(t, "input.geojson", testGeoJson)
	databaseFile := filepath.Join(t.TempDir(), "features.db")

	// Act
	_, err := Import(context.Background(), inputFile, databaseFile, transform.WebMercator)

	// Assert
	util.AssertNil(t, err)

	database, err := storage.OpenSqliteSource(context.Background(), databaseFile, "")
	util.AssertNil(t, err)
	defer database.Close()
	util.AssertEqual(t, transform.WebMercator, database.ReferenceSystem())
}

func TestImport_twiceFails(t *testing.T) {
	// Arrange
	inputFile := writeInputFile(t, "input.geojson", testGeoJson)
	databaseFile := filepath.Join(t.TempDir(), "features.db")
	_, err := Import(context.Background(), inputFile, databaseFile, "")
	util.AssertNil(t, err)

	// Act
	count, err := Import(context.Background(), inputFile, databaseFile, "")

	// Assert
	util.AssertNotNil(t, err)
	util.AssertEqual(t, 0, count)
}

func TestImport_unsupportedFile(t *testing.T) {
	// Arrange
	inputFile := writeInputFile(t, "input.csv", "a,b")
	databaseFile := filepath.Join(t.TempDir(), "features.db")

	// Act
	count, err := Import(context.Background(), inputFile, databaseFile, "")

	// Assert
	util.AssertNotNil(t, err)
	util.AssertEqual(t, 0, count)
	_, statErr := os.Stat(databaseFile)
	util.AssertTrue(t, os.IsNotExist(statErr))
}
