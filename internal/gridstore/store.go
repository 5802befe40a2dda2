package gridstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/cornerpoint/internal/timeutil"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// Store provides persistence for grid snapshots.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (or creates) the SQLite database at path and migrates it to
// the latest schema.
func Open(path string) (*Store, error) {
	return OpenWithClock(path, timeutil.RealClock{})
}

// OpenWithClock is Open with an explicit clock for snapshot timestamps.
func OpenWithClock(path string, clock timeutil.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, clock: clock}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert persists snap. An empty SnapshotID gets a new UUID and a zero
// TakenUnixNanos gets the store clock's current time.
func (s *Store) Insert(snap *Snapshot) error {
	if len(snap.GeometryBlob) == 0 {
		return fmt.Errorf("insert snapshot for %q: empty geometry blob", snap.GridName)
	}
	if snap.SnapshotID == "" {
		snap.SnapshotID = uuid.New().String()
	}
	if snap.TakenUnixNanos == 0 {
		snap.TakenUnixNanos = s.clock.Now().UnixNano()
	}

	var summary interface{}
	if snap.DzSummaryJSON != "" {
		summary = snap.DzSummaryJSON
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO grid_snapshots (
				snapshot_id, grid_name, taken_unix_nanos, ncol, nrow, nlay,
				zsep, n_active, reason, dz_summary_json, geometry_blob
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.SnapshotID, snap.GridName, snap.TakenUnixNanos, snap.NCol, snap.NRow, snap.NLay,
			snap.ZSep, snap.NActive, snap.Reason, summary, snap.GeometryBlob,
		)
		return err
	})
}

const snapshotColumns = `
	snapshot_id, grid_name, taken_unix_nanos, ncol, nrow, nlay,
	zsep, n_active, reason, dz_summary_json, geometry_blob`

// Get returns a single snapshot by ID.
func (s *Store) Get(snapshotID string) (*Snapshot, error) {
	row := s.db.QueryRow(`SELECT`+snapshotColumns+`
		FROM grid_snapshots
		WHERE snapshot_id = ?`, snapshotID)
	snap, err := scanSnapshot(row, true)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %s: %w", snapshotID, ErrNotFound)
	}
	return snap, err
}

// Latest returns the most recent snapshot of gridName.
func (s *Store) Latest(gridName string) (*Snapshot, error) {
	row := s.db.QueryRow(`SELECT`+snapshotColumns+`
		FROM grid_snapshots
		WHERE grid_name = ?
		ORDER BY taken_unix_nanos DESC, rowid DESC
		LIMIT 1`, gridName)
	snap, err := scanSnapshot(row, true)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grid %q: %w", gridName, ErrNotFound)
	}
	return snap, err
}

// List returns the snapshots of gridName, newest first. Geometry blobs are
// not loaded; use Get for a full snapshot.
func (s *Store) List(gridName string) ([]*Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT snapshot_id, grid_name, taken_unix_nanos, ncol, nrow, nlay,
		       zsep, n_active, reason, dz_summary_json
		FROM grid_snapshots
		WHERE grid_name = ?
		ORDER BY taken_unix_nanos DESC, rowid DESC`, gridName)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Delete removes a snapshot. It returns ErrNotFound when nothing matched.
func (s *Store) Delete(snapshotID string) error {
	var res sql.Result
	err := retryOnBusy(func() error {
		var err error
		res, err = s.db.Exec(`DELETE FROM grid_snapshots WHERE snapshot_id = ?`, snapshotID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot %s: %w", snapshotID, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(sc scanner, withBlob bool) (*Snapshot, error) {
	var snap Snapshot
	var summary sql.NullString
	dest := []interface{}{
		&snap.SnapshotID, &snap.GridName, &snap.TakenUnixNanos, &snap.NCol, &snap.NRow, &snap.NLay,
		&snap.ZSep, &snap.NActive, &snap.Reason, &summary,
	}
	if withBlob {
		dest = append(dest, &snap.GeometryBlob)
	}
	if err := sc.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	snap.DzSummaryJSON = summary.String
	return &snap, nil
}

// retryOnBusy retries fn while SQLite reports the database as locked.
func retryOnBusy(fn func() error) error {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(i+1) * 20 * time.Millisecond)
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
