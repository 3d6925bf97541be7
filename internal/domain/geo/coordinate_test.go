package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	c, err := ParseCoordinate("120,431")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{X: 120, Y: 431}, c)

	c, err = ParseCoordinate(" 12.5 , -3 ")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{X: 12.5, Y: -3}, c)

	for _, bad := range []string{"", "12", "12,34,56", "a,b"} {
		_, err := ParseCoordinate(bad)
		assert.ErrorIs(t, err, ErrInvalidCoordinate, "input %q", bad)
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	assert.Equal(t, "120,431", Coordinate{X: 120, Y: 431}.String())
	assert.Equal(t, "12.5,-3", Coordinate{X: 12.5, Y: -3}.String())

	c, err := ParseCoordinate(Coordinate{X: 77, Y: 0.25}.String())
	require.NoError(t, err)
	assert.Equal(t, Coordinate{X: 77, Y: 0.25}, c)
}

func TestParseSignalColor(t *testing.T) {
	cases := map[string]SignalColor{"0": SignalRed, "1": SignalOrange, "2": SignalGreen}
	for wire, want := range cases {
		got, err := ParseSignalColor(wire)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSignalColor("3")
	assert.ErrorIs(t, err, ErrInvalidSignalColor)
	_, err = ParseSignalColor("")
	assert.ErrorIs(t, err, ErrInvalidSignalColor)
}
