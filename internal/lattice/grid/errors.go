package grid

import "errors"

var (
	ErrDuplicateAssembly = errors.New("duplicate assembly")
	ErrMissingNeighbor   = errors.New("missing neighbor")
	ErrUnknownEntity     = errors.New("unknown entity")
	ErrOutsideGrid       = errors.New("outside grid")
)
