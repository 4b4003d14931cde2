package canvas

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCoordinates(t *testing.T) {
	v := NewValidator(10000, 10000)

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"origin", 0, 0, true},
		{"on canvas", 500, 732, true},
		{"negative overshoot", -10000, -10000, true},
		{"positive overshoot", 20000, 20000, true},
		{"past negative bound", -10001, 0, false},
		{"past positive bound", 0, 20001, false},
		{"nan", math.NaN(), 0, false},
		{"positive inf", math.Inf(1), 0, false},
		{"negative inf", 0, math.Inf(-1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.ValidCoordinates(tt.x, tt.y))
		})
	}
}

func TestValidCoordinatesCustomBounds(t *testing.T) {
	v := NewValidator(100, 50)

	assert.True(t, v.ValidCoordinates(200, 100))
	assert.False(t, v.ValidCoordinates(201, 0))
	assert.False(t, v.ValidCoordinates(0, 101))
	assert.True(t, v.ValidCoordinates(-100, -50))
}

func TestValidColor(t *testing.T) {
	tests := []struct {
		color string
		want  bool
	}{
		{"#fff", true},
		{"#FFFFFF", true},
		{"#1a2b3c", true},
		{"black", true},
		{"CornflowerBlue", true},
		{"rgb(1,2,3)", true},
		{"rgba(1,2,3,0.5)", true},
		{"", false},
		{"#ffff", false},
		{"#ggg", false},
		{"not-a-color", false},
		{"black; drop table", false},
		{strings.Repeat("a", 51), false},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidColor(tt.color))
		})
	}
}

func TestValidSize(t *testing.T) {
	assert.True(t, ValidSize(1))
	assert.True(t, ValidSize(0.5))
	assert.True(t, ValidSize(100))
	assert.False(t, ValidSize(0))
	assert.False(t, ValidSize(-3))
	assert.False(t, ValidSize(101))
	assert.False(t, ValidSize(math.NaN()))
	assert.False(t, ValidSize(math.Inf(1)))
}

func TestSanitizeRoomID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"team-42", "team-42"},
		{"abc def!", "abcdef"},
		{"../../etc", "etc"},
		{"room_1", "room1"},
		{"", "default"},
		{"!!!", "default"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeRoomID(tt.raw))
		})
	}
}

func TestKnownShapeType(t *testing.T) {
	assert.True(t, KnownShapeType("rectangle"))
	assert.True(t, KnownShapeType("circle"))
	assert.True(t, KnownShapeType("line"))
	assert.False(t, KnownShapeType("triangle"))
	assert.False(t, KnownShapeType(""))
	assert.False(t, KnownShapeType("Circle"))
}
