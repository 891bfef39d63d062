package io

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"io"
	"os"
	"snapindex/feature"
	"snapindex/index"
	"strconv"
	"time"
)

// ReadGeoJsonFile reads all features of a GeoJSON feature collection file.
func ReadGeoJsonFile(path string) ([]*feature.Feature, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open GeoJSON file %s", path)
	}
	defer file.Close()

	features, err := ReadGeoJson(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read GeoJSON file %s", path)
	}
	return features, nil
}

// ReadGeoJson reads a feature collection. The feature ID is taken from the "id" member or, when missing, from the
// "id" property. Features without any ID are numbered by their position in the collection, starting at 1, and must
// therefore not be mixed with features that have IDs.
func ReadGeoJson(reader io.Reader) ([]*feature.Feature, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to read GeoJSON data")
	}

	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse GeoJSON feature collection")
	}

	var features []*feature.Feature
	seenIDs := map[feature.ID]bool{}
	for i, geojsonFeature := range collection.Features {
		id, hasID, err := geojsonFeatureID(geojsonFeature)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid ID of GeoJSON feature %d", i)
		}
		if !hasID {
			id = feature.ID(i + 1)
		}
		if seenIDs[id] {
			return nil, errors.Errorf("Duplicate feature ID %d in GeoJSON data", id)
		}
		seenIDs[id] = true

		features = append(features, &feature.Feature{
			ID:         id,
			Geometry:   geojsonFeature.Geometry,
			Properties: geojsonFeature.Properties,
		})
	}

	sigolo.Debugf("Read %d features from GeoJSON", len(features))
	return features, nil
}

func geojsonFeatureID(geojsonFeature *geojson.Feature) (feature.ID, bool, error) {
	rawID := geojsonFeature.ID
	if rawID == nil {
		rawID = geojsonFeature.Properties["id"]
	}

	switch id := rawID.(type) {
	case nil:
		return 0, false, nil
	case float64:
		if id < 0 || id != float64(uint64(id)) {
			return 0, false, errors.Errorf("ID %v is not a non-negative integer", id)
		}
		return feature.ID(id), true, nil
	case string:
		parsedID, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return 0, false, errors.Wrapf(err, "ID '%s' is not a non-negative integer", id)
		}
		return feature.ID(parsedID), true, nil
	}
	return 0, false, errors.Errorf("ID of type %T not supported", rawID)
}

// ReadGeoJsonFeature parses a single GeoJSON feature, e.g. from an HTTP request body.
func ReadGeoJsonFeature(data []byte) (orb.Geometry, map[string]interface{}, error) {
	geojsonFeature, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Unable to parse GeoJSON feature")
	}
	if geojsonFeature.Geometry == nil {
		return nil, nil, errors.New("GeoJSON feature has no geometry")
	}
	return geojsonFeature.Geometry, geojsonFeature.Properties, nil
}

// ReadGeoJsonGeometry parses a GeoJSON geometry object.
func ReadGeoJsonGeometry(data []byte) (orb.Geometry, error) {
	geometry, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse GeoJSON geometry")
	}
	if geometry.Coordinates == nil && len(geometry.Geometries) == 0 {
		return nil, errors.Errorf("GeoJSON geometry of type '%s' has no coordinates", geometry.Type)
	}
	return geometry.Geometry(), nil
}

func WriteMatchesAsGeoJsonFile(results []index.MatchList, path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Unable to create GeoJSON file %s", path)
	}

	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "Unable to close file handle for GeoJSON file %s", path)
		}
	}()

	return WriteMatchesAsGeoJson(results, file)
}

// WriteMatchesAsGeoJson writes all matches as one feature collection of points. The "probe" property is the index
// of the match list the match belongs to.
func WriteMatchesAsGeoJson(results []index.MatchList, writer io.Writer) error {
	sigolo.Debugf("Write matches to GeoJSON")
	writeStartTime := time.Now()

	featureCollection := MatchesToGeoJson(results)

	geojsonBytes, err := featureCollection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Unable to serialize matches")
	}

	_, err = writer.Write(geojsonBytes)
	if err != nil {
		return errors.Wrap(err, "Unable to write matches")
	}

	sigolo.Debugf("Finished writing %d features in %s", len(featureCollection.Features), time.Since(writeStartTime))
	return nil
}

func MatchesToGeoJson(results []index.MatchList) *geojson.FeatureCollection {
	featureCollection := geojson.NewFeatureCollection()
	for probeIndex, matches := range results {
		for _, match := range matches {
			geojsonFeature := geojson.NewFeature(match.Point())

			geojsonFeature.Properties["probe"] = probeIndex
			geojsonFeature.Properties["type"] = match.Type().String()
			geojsonFeature.Properties["feature_id"] = uint64(match.FeatureID())
			geojsonFeature.Properties["distance"] = match.Distance()
			geojsonFeature.Properties["vertex_index"] = match.VertexIndex()
			if match.HasEdge() {
				start, end := match.EdgePoints()
				geojsonFeature.Properties["edge"] = [][2]float64{start, end}
			}

			featureCollection.Features = append(featureCollection.Features, geojsonFeature)
		}
	}
	return featureCollection
}
