package canvas

import (
	"errors"

	"github.com/inamate/inkcanvas/internal/stroke"
)

var (
	ErrDuplicateID      = errors.New("duplicate stroke id")
	ErrUnknownID        = errors.New("unknown stroke id")
	ErrInvalidSaveCount = stroke.ErrInvalidSaveCount
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNoPendingPoints  = stroke.ErrNoPendingPoints
)
