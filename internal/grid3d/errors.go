package grid3d

import "errors"

var (
	// ErrInvalidDimensions reports non-positive dimensions or separation,
	// or a buffer whose length does not match the grid dimensions.
	ErrInvalidDimensions = errors.New("invalid grid dimensions")

	// ErrOutOfRange reports a pillar or layer index outside the grid.
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvalidArgument reports any other unusable parameter, such as an
	// unknown adjust mode or a non-finite offset.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrZInconsistent reports a layer boundary that is not separated from
	// the boundary above it by at least the minimum gap.
	ErrZInconsistent = errors.New("grid is not z-consistent")
)
