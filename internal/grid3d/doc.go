// Package grid3d owns the corner-point grid geometry model and the
// vertical repair operations that keep it valid.
//
// Responsibilities: pillar/corner index arithmetic, Z-consistency repair
// (MakeZConsistent), local pillar Z adjustment (AdjustZLocal), and the small
// set of grid utilities built on the same buffers (box creation, cell
// thickness, activation).
// Key types: Dimensions, Grid, AdjustRequest, RepairStats.
//
// Buffers are owned by the caller. Operations validate every argument
// before touching a buffer, so a returned error means nothing was mutated.
// No SQL, plotting or file I/O is allowed in this package.
package grid3d
