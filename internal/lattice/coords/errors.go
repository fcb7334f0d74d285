package coords

import "errors"

var (
	ErrInvalidCoordinate         = errors.New("invalid coordinate")
	ErrInvalidDirection          = errors.New("invalid direction")
	ErrAmbiguousSharedCoordinate = errors.New("vertices do not share one component per axis")
)
