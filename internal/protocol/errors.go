package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Lattice addressing.
	ErrInvalidCoordinate         = "E_INVALID_COORDINATE"
	ErrInvalidDirection          = "E_INVALID_DIRECTION"
	ErrAmbiguousSharedCoordinate = "E_AMBIGUOUS_SHARED_COORDINATE"
	ErrUnknownEntity             = "E_UNKNOWN_ENTITY"
	ErrOutsideGrid               = "E_OUTSIDE_GRID"
	ErrMissingNeighbor           = "E_MISSING_NEIGHBOR"
	ErrDuplicateAssembly         = "E_DUPLICATE_ASSEMBLY"

	// Edit layer.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrBusy       = "E_BUSY"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:           {},
	ErrProtoVersion:              {},
	ErrInvalidCoordinate:         {},
	ErrInvalidDirection:          {},
	ErrAmbiguousSharedCoordinate: {},
	ErrUnknownEntity:             {},
	ErrOutsideGrid:               {},
	ErrMissingNeighbor:           {},
	ErrDuplicateAssembly:         {},
	ErrBadRequest:                {},
	ErrBusy:                      {},
	ErrInternal:                  {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
