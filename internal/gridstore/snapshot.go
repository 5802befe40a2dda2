package gridstore

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/banshee-data/cornerpoint/internal/grid3d"
)

// Snapshot matches the grid_snapshots table.
type Snapshot struct {
	SnapshotID     string  // uuid, assigned on insert when empty
	GridName       string  // grid_name TEXT NOT NULL
	TakenUnixNanos int64   // taken_unix_nanos, from the store clock when zero
	NCol           int     // ncol INTEGER NOT NULL
	NRow           int     // nrow INTEGER NOT NULL
	NLay           int     // nlay INTEGER NOT NULL
	ZSep           float64 // zsep used for the repair preceding the snapshot
	NActive        int     // n_active INTEGER NOT NULL
	Reason         string  // reason TEXT ('created', 'repaired', 'adjusted', 'manual')
	DzSummaryJSON  string  // dz_summary_json TEXT NULL, serialised grid3d.DzSummary
	GeometryBlob   []byte  // geometry_blob BLOB NOT NULL (gob+gzip geometry)
}

// geometry is the serialised form of the grid buffers.
type geometry struct {
	Coord  []float64
	ZCorn  []float64
	ActNum []bool
}

// NewSnapshot captures g. The buffers are copied into the blob, so g can
// keep changing afterwards.
func NewSnapshot(g *grid3d.Grid, zsep float64, reason string) (*Snapshot, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", g.Name, err)
	}
	blob, err := serializeGeometry(geometry{Coord: g.Coord, ZCorn: g.ZCorn, ActNum: g.ActNum})
	if err != nil {
		return nil, fmt.Errorf("serialize grid %q: %w", g.Name, err)
	}

	snap := &Snapshot{
		GridName:     g.Name,
		NCol:         g.Dims.NCol,
		NRow:         g.Dims.NRow,
		NLay:         g.Dims.NLay,
		ZSep:         zsep,
		NActive:      g.NActive(),
		Reason:       reason,
		GeometryBlob: blob,
	}
	summary := grid3d.SummarizeDz(g.Dz(), g.ActNum)
	if b, err := json.Marshal(summary); err == nil {
		snap.DzSummaryJSON = string(b)
	}
	return snap, nil
}

// Dims returns the snapshot dimensions.
func (s *Snapshot) Dims() grid3d.Dimensions {
	return grid3d.Dimensions{NCol: s.NCol, NRow: s.NRow, NLay: s.NLay}
}

// Grid decodes the geometry blob into a new Grid.
func (s *Snapshot) Grid() (*grid3d.Grid, error) {
	geo, err := deserializeGeometry(s.GeometryBlob)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.SnapshotID, err)
	}
	return grid3d.NewGrid(s.GridName, s.Dims(), geo.Coord, geo.ZCorn, geo.ActNum)
}

// DzSummary decodes the stored thickness summary. The second result is
// false when the snapshot has none.
func (s *Snapshot) DzSummary() (grid3d.DzSummary, bool) {
	var summary grid3d.DzSummary
	if s.DzSummaryJSON == "" {
		return summary, false
	}
	if err := json.Unmarshal([]byte(s.DzSummaryJSON), &summary); err != nil {
		return summary, false
	}
	return summary, true
}

// serializeGeometry compresses the grid buffers using gob encoding and gzip compression.
func serializeGeometry(geo geometry) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(geo); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeGeometry decompresses and decodes a gob+gzip geometry blob.
func deserializeGeometry(blob []byte) (geometry, error) {
	var geo geometry
	if len(blob) == 0 {
		return geo, fmt.Errorf("empty geometry blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return geo, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	if err := gob.NewDecoder(gz).Decode(&geo); err != nil {
		return geo, fmt.Errorf("failed to decode geometry: %w", err)
	}
	return geo, nil
}
