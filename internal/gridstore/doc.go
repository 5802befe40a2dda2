// Package gridstore persists corner-point grid snapshots in SQLite.
//
// Each snapshot stores the grid dimensions, the separation used for its
// last repair, and a gob+gzip blob of the pillar, depth and active-cell
// buffers. The schema is managed with embedded golang-migrate migrations.
package gridstore
