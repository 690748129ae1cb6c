package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestConstant(t *testing.T) {
	b := NewConstant([3]float64{0, 10, 0}, [6]float64{-200, 200, -100, 100, -150, 450})

	type testCase struct {
		name string
		pos  r3.Vec
		want r3.Vec
	}
	tests := []testCase{
		{"inside", r3.Vec{X: 1, Y: -14.7, Z: 250}, r3.Vec{Y: 10}},
		{"on the boundary", r3.Vec{X: 200, Y: 100, Z: 450}, r3.Vec{Y: 10}},
		{"outside", r3.Vec{X: 0, Y: 0, Z: 451}, r3.Vec{}},
	}
	check := func(t *testing.T, tc testCase) {
		assert.Equal(t, tc.want, b.Field(tc.pos))
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) { check(t, tc) })
	}
}

func TestScaled(t *testing.T) {
	b := Scaled{
		Map:   NewConstant([3]float64{1, 2, 3}, [6]float64{-1, 1, -1, 1, -1, 1}),
		Scale: -1,
	}
	assert.Equal(t, r3.Vec{X: -1, Y: -2, Z: -3}, b.Field(r3.Vec{}))
	assert.Equal(t, r3.Vec{}, b.Field(r3.Vec{X: 5}))
}
