package feature

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"snapindex/transform"
)

// ID identifies a feature within one source. It's stable across geometry edits and not reused after deletion.
type ID uint64

var ErrFeatureNotFound = errors.New("Feature not found")

type Feature struct {
	ID         ID
	Geometry   orb.Geometry
	Properties map[string]interface{}
}

func (f *Feature) GetID() ID {
	return f.ID
}

func (f *Feature) GetGeometry() orb.Geometry {
	return f.Geometry
}

func (f *Feature) GetGeometryType() GeometryType {
	return GeometryTypeOf(f.Geometry)
}

func (f *Feature) Print() {
	if !sigolo.ShouldLogTrace() {
		return
	}

	sigolo.Tracef("Feature:")
	sigolo.Tracef("  id=%d", f.ID)
	sigolo.Tracef("  type=%s", f.GetGeometryType().String())
	sigolo.Tracef("  points=%d", PointCount(f.Geometry))
	sigolo.Tracef("  properties=%v", f.Properties)
}

// Source is a collection of features the point locator indexes. Implementations own the live geometries, callers
// must not modify the geometries they receive.
type Source interface {
	// ReferenceSystem returns the native reference system of all geometries of this source.
	ReferenceSystem() transform.ReferenceSystem

	// Features calls the handler for each feature ordered by ID. Iteration stops when the handler returns false.
	Features(handler func(f *Feature) bool) error

	// Feature returns the feature with the given ID or an error wrapping ErrFeatureNotFound.
	Feature(id ID) (*Feature, error)

	// Count returns the current number of features.
	Count() int
}

// Listener receives edit notifications from a Source. Handlers are called synchronously after the edit has been
// applied to the source.
type Listener interface {
	OnFeatureAdded(id ID)
	OnFeatureDeleted(id ID)
	OnGeometryChanged(id ID, geometry orb.Geometry)
}

// Notifier is implemented by sources that emit edit notifications.
type Notifier interface {
	Subscribe(listener Listener)
	Unsubscribe(listener Listener)
}

// EditableSource is a source whose features can be edited. Every successful edit notifies the subscribed listeners
// after it has been applied.
type EditableSource interface {
	Source
	Notifier

	// NextID returns an ID that has never been used in this source.
	NextID() ID
	Add(f *Feature) error
	Delete(id ID) error
	ChangeGeometry(id ID, geometry orb.Geometry) error
}

// Listeners is a registry of listeners which sources can embed to implement Notifier.
type Listeners struct {
	listeners []Listener
}

func (l *Listeners) Subscribe(listener Listener) {
	for _, existing := range l.listeners {
		if existing == listener {
			return
		}
	}
	l.listeners = append(l.listeners, listener)
}

func (l *Listeners) Unsubscribe(listener Listener) {
	for i, existing := range l.listeners {
		if existing == listener {
			l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
			return
		}
	}
}

func (l *Listeners) NotifyAdded(id ID) {
	sigolo.Tracef("Notify %d listeners about added feature %d", len(l.listeners), id)
	for _, listener := range l.listeners {
		listener.OnFeatureAdded(id)
	}
}

func (l *Listeners) NotifyDeleted(id ID) {
	sigolo.Tracef("Notify %d listeners about deleted feature %d", len(l.listeners), id)
	for _, listener := range l.listeners {
		listener.OnFeatureDeleted(id)
	}
}

func (l *Listeners) NotifyGeometryChanged(id ID, geometry orb.Geometry) {
	sigolo.Tracef("Notify %d listeners about changed geometry of feature %d", len(l.listeners), id)
	for _, listener := range l.listeners {
		listener.OnGeometryChanged(id, geometry)
	}
}
