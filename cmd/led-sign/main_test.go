package main

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somebox/is31fl373x"
)

func TestScrollPeriod(t *testing.T) {
	p, err := scrollPeriod(20)
	require.NoError(t, err)
	assert.Equal(t, time.Second/20, p)

	for _, speed := range []int{0, -3} {
		_, err := scrollPeriod(speed)
		assert.Error(t, err, "speed %d", speed)
	}
}

func TestParseStraps(t *testing.T) {
	straps, err := parseStraps("gnd, vcc:scl")
	require.NoError(t, err)
	require.Len(t, straps, 2)
	assert.Equal(t, [2]is31fl373x.AddrPin{is31fl373x.GND, is31fl373x.GND}, straps[0])
	assert.Equal(t, [2]is31fl373x.AddrPin{is31fl373x.VCC, is31fl373x.SCL}, straps[1])

	_, err = parseStraps("gnd,vdd")
	assert.Error(t, err)
}

func TestRenderTextPixelFont(t *testing.T) {
	strip, textW, err := renderText("Hi", 12, 24, true, 0)
	require.NoError(t, err)
	assert.Equal(t, 14, textW)
	assert.Equal(t, image.Rect(0, 0, textW+48, 12), strip.Bounds())

	var lit bool
	for _, p := range strip.Pix {
		if p != 0 {
			lit = true
			break
		}
	}
	assert.True(t, lit, "expected rendered glyphs in the strip")
}
