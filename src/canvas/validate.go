package canvas

import (
	"math"
	"regexp"
	"strings"

	"github.com/openboard/relay/src/types"
)

// Server-normalized defaults applied to malformed optional fields.
// Bad input from a slightly out-of-sync client is expected noise, so
// fields fall back instead of failing the whole event.
const (
	DefaultTool      = "PENCIL"
	DefaultColor     = "black"
	DefaultBrushSize = float64(3)

	DefaultCanvasWidth  = float64(10000)
	DefaultCanvasHeight = float64(10000)

	maxColorLen  = 50
	maxRoomIDLen = 50
	maxBrushSize = 100
)

var (
	hexColorRe   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	namedColorRe = regexp.MustCompile(`^[a-zA-Z]+$`)
	roomIDJunkRe = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// Validator checks the shape and range of inbound payload fields
// against the configured canvas bounds. All methods are total.
type Validator struct {
	width  float64
	height float64
}

// NewValidator creates a validator for the given canvas bounds.
// Non-positive bounds fall back to the defaults.
func NewValidator(width, height float64) Validator {
	if width <= 0 {
		width = DefaultCanvasWidth
	}
	if height <= 0 {
		height = DefaultCanvasHeight
	}
	return Validator{width: width, height: height}
}

// ValidCoordinates reports whether a point is finite and within
// [-W, 2W] x [-H, 2H]. The generous bound admits off-canvas gestures
// without admitting unbounded values.
func (v Validator) ValidCoordinates(x, y float64) bool {
	if !finite(x) || !finite(y) {
		return false
	}
	return x >= -v.width && x <= 2*v.width && y >= -v.height && y <= 2*v.height
}

// ValidColor reports whether s is a 3/6-digit hex color, a bare
// alphabetic name, or an rgb()/rgba() form of bounded length.
func ValidColor(s string) bool {
	if s == "" || len(s) > maxColorLen {
		return false
	}
	if hexColorRe.MatchString(s) || namedColorRe.MatchString(s) {
		return true
	}
	return strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(")
}

// ValidSize reports whether a brush size is finite and in (0, 100].
func ValidSize(size float64) bool {
	return finite(size) && size > 0 && size <= maxBrushSize
}

// SanitizeRoomID strips every character outside [A-Za-z0-9-],
// truncates to 50 characters, and substitutes "default" when nothing
// survives.
func SanitizeRoomID(raw string) string {
	s := roomIDJunkRe.ReplaceAllString(raw, "")
	if len(s) > maxRoomIDLen {
		s = s[:maxRoomIDLen]
	}
	if s == "" {
		return types.DefaultRoom
	}
	return s
}

// KnownShapeType reports whether t is a recognized shape.
func KnownShapeType(t string) bool {
	switch t {
	case "rectangle", "circle", "line":
		return true
	}
	return false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
