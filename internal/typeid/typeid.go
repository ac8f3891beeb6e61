package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixCanvas = "canvas"
	PrefixStroke = "stroke"
	PrefixUser   = "user"
	PrefixOp     = "op"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewCanvasID() string { return New(PrefixCanvas) }
func NewStrokeID() string { return New(PrefixStroke) }
func NewUserID() string   { return New(PrefixUser) }
func NewOpID() string     { return New(PrefixOp) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
