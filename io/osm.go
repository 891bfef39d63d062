package io

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"os"
	"snapindex/feature"
	"strings"
	"time"
)

// ReadOsmFile reads tagged nodes as points and ways as line strings or, when they are closed areas, as polygons.
// Relations are not supported. Feature IDs are the OSM feature IDs, which encode object type and OSM ID, so nodes
// and ways never collide.
func ReadOsmFile(ctx context.Context, path string) ([]*feature.Feature, error) {
	file, scanner, err := getScanner(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	defer scanner.Close()

	sigolo.Debugf("Start reading features from OSM file %s", path)
	readStartTime := time.Now()

	nodeToPositionMap := map[osm.NodeID]orb.Point{}
	var features []*feature.Feature
	skippedWays := 0

	for scanner.Scan() {
		switch osmObj := scanner.Object().(type) {
		case *osm.Node:
			point := orb.Point{osmObj.Lon, osmObj.Lat}
			nodeToPositionMap[osmObj.ID] = point

			if len(osmObj.Tags) == 0 {
				continue
			}
			features = append(features, &feature.Feature{
				ID:         feature.ID(osmObj.FeatureID()),
				Geometry:   point,
				Properties: tagsToProperties(osmObj.Tags),
			})
		case *osm.Way:
			geometry, ok := wayGeometry(osmObj, nodeToPositionMap)
			if !ok {
				skippedWays++
				continue
			}
			features = append(features, &feature.Feature{
				ID:         feature.ID(osmObj.FeatureID()),
				Geometry:   geometry,
				Properties: tagsToProperties(osmObj.Tags),
			})
		}
	}

	err = scanner.Err()
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read OSM file %s", path)
	}

	sigolo.Debugf("Read %d features from OSM file %s in %s (%d ways without all node positions skipped)", len(features), path, time.Since(readStartTime), skippedWays)
	return features, nil
}

func getScanner(ctx context.Context, path string) (*os.File, osm.Scanner, error) {
	if !isOsmFile(path) {
		return nil, nil, errors.Errorf("Input file %s must be an .osm or .pbf file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Unable to open OSM file %s", path)
	}

	var scanner osm.Scanner
	if strings.HasSuffix(path, ".osm") {
		scanner = osmxml.New(ctx, f)
	} else {
		scanner = osmpbf.New(ctx, f, 1)
	}
	return f, scanner, nil
}

func isOsmFile(path string) bool {
	return strings.HasSuffix(path, ".osm") || strings.HasSuffix(path, ".pbf")
}

// wayGeometry resolves the node positions of the way. Ways referencing unknown nodes can't be turned into geometries.
func wayGeometry(way *osm.Way, nodeToPositionMap map[osm.NodeID]orb.Point) (orb.Geometry, bool) {
	lineString := orb.LineString{}
	for _, wayNode := range way.Nodes {
		point, ok := nodeToPositionMap[wayNode.ID]
		if !ok {
			if wayNode.Lat == 0 && wayNode.Lon == 0 {
				sigolo.Tracef("Way %d references unknown node %d", way.ID, wayNode.ID)
				return nil, false
			}
			point = orb.Point{wayNode.Lon, wayNode.Lat}
		}
		lineString = append(lineString, point)
	}

	if len(lineString) == 0 {
		return nil, false
	}

	if len(lineString) >= 4 && lineString[0] == lineString[len(lineString)-1] && way.Polygon() {
		return orb.Polygon{orb.Ring(lineString)}, true
	}
	return lineString, true
}

func tagsToProperties(tags osm.Tags) map[string]interface{} {
	properties := map[string]interface{}{}
	for _, tag := range tags {
		properties[tag.Key] = tag.Value
	}
	return properties
}
