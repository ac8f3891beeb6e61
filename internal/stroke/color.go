package stroke

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Color is a packed 0xAARRGGBB colour, the same layout hosts send as an int.
// Any colour with zero alpha is the erase colour.
type Color uint32

// Transparent is the canonical erase colour.
const Transparent Color = 0

// Black is the default stroke colour.
const Black Color = 0xFF000000

var ErrInvalidColor = errors.New("invalid color")

// ARGB packs the four channels into a Color.
func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) Alpha() uint8 { return uint8(c >> 24) }
func (c Color) Red() uint8   { return uint8(c >> 16) }
func (c Color) Green() uint8 { return uint8(c >> 8) }
func (c Color) Blue() uint8  { return uint8(c) }

// IsEraser reports whether strokes in this colour erase instead of paint.
func (c Color) IsEraser() bool {
	return c.Alpha() == 0
}

// Hex formats the colour as #AARRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// ParseColor parses #RRGGBB (opaque) or #AARRGGBB.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 6:
		h = "FF" + h
	case 8:
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color(v), nil
}
