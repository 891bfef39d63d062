package feature

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"slices"
	"snapindex/transform"
)

// MemorySource is an editable in-memory feature collection. Every edit is applied first and then announced to the
// subscribed listeners. It's not safe for concurrent use.
type MemorySource struct {
	Listeners
	referenceSystem transform.ReferenceSystem
	features        map[ID]*Feature
	highestID       ID // Highest ID ever seen, so that NextID never hands out the ID of a deleted feature.
}

func NewMemorySource(referenceSystem transform.ReferenceSystem, features ...*Feature) *MemorySource {
	s := &MemorySource{
		referenceSystem: referenceSystem,
		features:        map[ID]*Feature{},
	}
	for _, f := range features {
		s.features[f.ID] = f
		if f.ID > s.highestID {
			s.highestID = f.ID
		}
	}
	return s
}

func (s *MemorySource) ReferenceSystem() transform.ReferenceSystem {
	return s.referenceSystem
}

func (s *MemorySource) Features(handler func(f *Feature) bool) error {
	for _, id := range s.sortedIDs() {
		if !handler(s.features[id]) {
			return nil
		}
	}
	return nil
}

func (s *MemorySource) Feature(id ID) (*Feature, error) {
	f, ok := s.features[id]
	if !ok {
		return nil, errors.Wrapf(ErrFeatureNotFound, "No feature with ID %d in memory source", id)
	}
	return f, nil
}

func (s *MemorySource) Count() int {
	return len(s.features)
}

// NextID returns an ID that has never been used in this source.
func (s *MemorySource) NextID() ID {
	return s.highestID + 1
}

func (s *MemorySource) Add(f *Feature) error {
	if _, exists := s.features[f.ID]; exists {
		return errors.Errorf("Feature with ID %d already exists", f.ID)
	}
	s.features[f.ID] = f
	if f.ID > s.highestID {
		s.highestID = f.ID
	}
	sigolo.Debugf("Added feature %d to memory source", f.ID)
	s.NotifyAdded(f.ID)
	return nil
}

func (s *MemorySource) Delete(id ID) error {
	if _, exists := s.features[id]; !exists {
		return errors.Wrapf(ErrFeatureNotFound, "Unable to delete feature %d", id)
	}
	delete(s.features, id)
	sigolo.Debugf("Deleted feature %d from memory source", id)
	s.NotifyDeleted(id)
	return nil
}

func (s *MemorySource) ChangeGeometry(id ID, geometry orb.Geometry) error {
	f, exists := s.features[id]
	if !exists {
		return errors.Wrapf(ErrFeatureNotFound, "Unable to change geometry of feature %d", id)
	}
	f.Geometry = geometry
	sigolo.Debugf("Changed geometry of feature %d in memory source", id)
	s.NotifyGeometryChanged(id, geometry)
	return nil
}

// Sync replaces the content of this source with the given features and emits one notification per difference:
// deletions first, then geometry changes, then additions. Features with equal geometry don't cause notifications.
func (s *MemorySource) Sync(features []*Feature) {
	newFeatures := map[ID]*Feature{}
	for _, f := range features {
		newFeatures[f.ID] = f
	}

	deleted, changed, added := 0, 0, 0

	for _, id := range s.sortedIDs() {
		if _, stillExists := newFeatures[id]; !stillExists {
			_ = s.Delete(id)
			deleted++
		}
	}

	for _, id := range sortedKeys(newFeatures) {
		newFeature := newFeatures[id]
		existing, exists := s.features[id]
		if !exists {
			_ = s.Add(newFeature)
			added++
			continue
		}

		existing.Properties = newFeature.Properties
		if !orb.Equal(existing.Geometry, newFeature.Geometry) {
			_ = s.ChangeGeometry(id, newFeature.Geometry)
			changed++
		}
	}

	sigolo.Debugf("Synced memory source: %d deleted, %d changed, %d added", deleted, changed, added)
}

func (s *MemorySource) sortedIDs() []ID {
	return sortedKeys(s.features)
}

func sortedKeys(features map[ID]*Feature) []ID {
	ids := make([]ID, 0, len(features))
	for id := range features {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
