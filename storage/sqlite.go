package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/pkg/errors"
	"snapindex/feature"
	"snapindex/transform"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const (
	metadataReferenceSystem = "reference_system"
	metadataHighestID       = "highest_id"
)

// SqliteSource is an editable feature source stored in a SQLite database. Geometries are stored as WKB, properties
// as JSON. Like the memory source, it notifies listeners after each edit and is not safe for concurrent edits.
type SqliteSource struct {
	feature.Listeners
	db              *sql.DB
	path            string
	referenceSystem transform.ReferenceSystem
	highestID       feature.ID
}

// OpenSqliteSource opens or creates the database at the given path. A new database stores the given reference
// system. An existing database keeps its reference system and the given one must either match it or be undefined.
func OpenSqliteSource(ctx context.Context, path string, referenceSystem transform.ReferenceSystem) (*SqliteSource, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open SQLite database %s", path)
	}

	s := &SqliteSource{
		db:   db,
		path: path,
	}

	err = s.init(ctx, referenceSystem)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sigolo.Debugf("Opened SQLite source %s with reference system %s", path, s.referenceSystem)
	return s, nil
}

func (s *SqliteSource) init(ctx context.Context, referenceSystem transform.ReferenceSystem) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS features (
		id INTEGER PRIMARY KEY,
		geometry BLOB,
		properties TEXT
	);
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return errors.Wrapf(err, "Unable to create tables in %s", s.path)
	}

	storedReferenceSystem, hasReferenceSystem, err := s.metadata(ctx, metadataReferenceSystem)
	if err != nil {
		return err
	}

	switch {
	case !hasReferenceSystem:
		s.referenceSystem = referenceSystem
		err = s.setMetadata(ctx, s.db, metadataReferenceSystem, string(referenceSystem))
		if err != nil {
			return err
		}
	case referenceSystem.IsValid() && transform.ReferenceSystem(storedReferenceSystem) != referenceSystem:
		return errors.Errorf("Database %s uses reference system %s, not %s", s.path, storedReferenceSystem, referenceSystem)
	default:
		s.referenceSystem = transform.ReferenceSystem(storedReferenceSystem)
	}

	var maxID int64
	err = s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM features").Scan(&maxID)
	if err != nil {
		return errors.Wrapf(err, "Unable to read highest feature ID from %s", s.path)
	}
	s.highestID = feature.ID(maxID)

	storedHighestID, hasHighestID, err := s.metadata(ctx, metadataHighestID)
	if err != nil {
		return err
	}
	if hasHighestID {
		highestID, err := strconv.ParseUint(storedHighestID, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "Invalid highest feature ID '%s' in %s", storedHighestID, s.path)
		}
		if feature.ID(highestID) > s.highestID {
			s.highestID = feature.ID(highestID)
		}
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SqliteSource) metadata(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "Unable to read metadata '%s' from %s", key, s.path)
	}
	return value, true, nil
}

func (s *SqliteSource) setMetadata(ctx context.Context, db execer, key string, value string) error {
	_, err := db.ExecContext(ctx, "INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", key, value)
	if err != nil {
		return errors.Wrapf(err, "Unable to write metadata '%s' to %s", key, s.path)
	}
	return nil
}

func (s *SqliteSource) Close() error {
	return s.db.Close()
}

func (s *SqliteSource) ReferenceSystem() transform.ReferenceSystem {
	return s.referenceSystem
}

func (s *SqliteSource) Features(handler func(f *feature.Feature) bool) error {
	queryStartTime := time.Now()

	rows, err := s.db.Query("SELECT id, geometry, properties FROM features ORDER BY id")
	if err != nil {
		return errors.Wrapf(err, "Unable to query features from %s", s.path)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return err
		}
		count++
		if !handler(f) {
			break
		}
	}

	err = rows.Err()
	if err != nil {
		return errors.Wrapf(err, "Unable to read features from %s", s.path)
	}

	sigolo.Debugf("Read %d features from %s in %s", count, s.path, time.Since(queryStartTime))
	return nil
}

func (s *SqliteSource) Feature(id feature.ID) (*feature.Feature, error) {
	row := s.db.QueryRow("SELECT id, geometry, properties FROM features WHERE id = ?", int64(id))
	f, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(feature.ErrFeatureNotFound, "No feature with ID %d in %s", id, s.path)
	}
	return f, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeature(row rowScanner) (*feature.Feature, error) {
	var id int64
	var properties sql.NullString
	geometryScanner := wkb.Scanner(nil)

	err := row.Scan(&id, geometryScanner, &properties)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "Unable to scan feature")
	}

	f := &feature.Feature{
		ID: feature.ID(id),
	}
	if geometryScanner.Valid {
		f.Geometry = geometryScanner.Geometry
	}
	if properties.Valid && properties.String != "" {
		err = json.Unmarshal([]byte(properties.String), &f.Properties)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to parse properties of feature %d", id)
		}
	}
	return f, nil
}

// Count returns the number of stored features or 0 when the database can't be read.
func (s *SqliteSource) Count() int {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM features").Scan(&count)
	if err != nil {
		sigolo.Errorf("Unable to count features in %s: %+v", s.path, err)
		return 0
	}
	return count
}

func (s *SqliteSource) NextID() feature.ID {
	return s.highestID + 1
}

func (s *SqliteSource) Add(f *feature.Feature) error {
	err := s.insert(context.Background(), f)
	if err != nil {
		return err
	}
	sigolo.Debugf("Added feature %d to %s", f.ID, s.path)
	s.NotifyAdded(f.ID)
	return nil
}

// Import adds all features in one transaction. Either all features are added or none. Listeners are notified after
// the transaction has been committed.
func (s *SqliteSource) Import(ctx context.Context, features []*feature.Feature) error {
	importStartTime := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Unable to start import transaction")
	}

	highestID := s.highestID
	for _, f := range features {
		err = s.insertWith(ctx, tx, f)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if f.ID > highestID {
			highestID = f.ID
		}
	}

	err = s.setMetadata(ctx, tx, metadataHighestID, strconv.FormatUint(uint64(highestID), 10))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		return errors.Wrap(err, "Unable to commit import transaction")
	}
	s.highestID = highestID

	sigolo.Debugf("Imported %d features into %s in %s", len(features), s.path, time.Since(importStartTime))
	for _, f := range features {
		s.NotifyAdded(f.ID)
	}
	return nil
}

func (s *SqliteSource) insert(ctx context.Context, f *feature.Feature) error {
	err := s.insertWith(ctx, s.db, f)
	if err != nil {
		return err
	}
	if f.ID > s.highestID {
		s.highestID = f.ID
		err = s.setMetadata(ctx, s.db, metadataHighestID, strconv.FormatUint(uint64(f.ID), 10))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SqliteSource) insertWith(ctx context.Context, db execer, f *feature.Feature) error {
	properties, err := json.Marshal(f.Properties)
	if err != nil {
		return errors.Wrapf(err, "Unable to serialize properties of feature %d", f.ID)
	}

	_, err = db.ExecContext(ctx, "INSERT INTO features (id, geometry, properties) VALUES (?, ?, ?)", int64(f.ID), wkb.Value(f.Geometry), string(properties))
	if err != nil {
		return errors.Wrapf(err, "Unable to insert feature %d into %s", f.ID, s.path)
	}
	return nil
}

func (s *SqliteSource) Delete(id feature.ID) error {
	result, err := s.db.Exec("DELETE FROM features WHERE id = ?", int64(id))
	err = checkAffected(result, err, id)
	if err != nil {
		return errors.Wrapf(err, "Unable to delete feature %d from %s", id, s.path)
	}

	sigolo.Debugf("Deleted feature %d from %s", id, s.path)
	s.NotifyDeleted(id)
	return nil
}

func (s *SqliteSource) ChangeGeometry(id feature.ID, geometry orb.Geometry) error {
	result, err := s.db.Exec("UPDATE features SET geometry = ? WHERE id = ?", wkb.Value(geometry), int64(id))
	err = checkAffected(result, err, id)
	if err != nil {
		return errors.Wrapf(err, "Unable to change geometry of feature %d in %s", id, s.path)
	}

	sigolo.Debugf("Changed geometry of feature %d in %s", id, s.path)
	s.NotifyGeometryChanged(id, geometry)
	return nil
}

func checkAffected(result sql.Result, err error, id feature.ID) error {
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrapf(feature.ErrFeatureNotFound, "No feature with ID %d", id)
	}
	return nil
}
