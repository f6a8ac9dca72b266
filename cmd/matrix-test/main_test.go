package main

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somebox/is31fl373x"
)

func TestFramePeriod(t *testing.T) {
	p, err := framePeriod(30)
	require.NoError(t, err)
	assert.Equal(t, time.Second/30, p)

	for _, fps := range []int{0, -1} {
		_, err := framePeriod(fps)
		assert.Error(t, err, "fps %d", fps)
	}
}

func TestParseStrap(t *testing.T) {
	pin, err := parseStrap("SCL")
	require.NoError(t, err)
	assert.Equal(t, is31fl373x.SCL, pin)

	_, err = parseStrap("vdd")
	assert.Error(t, err)
}

func TestSweepHead(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 12, 12))
	sweep(img, 3)
	assert.Equal(t, uint8(0xFF), img.GrayAt(3, 0).Y)
	assert.Equal(t, uint8(0x7F), img.GrayAt(2, 0).Y)
	assert.Equal(t, uint8(0), img.GrayAt(4, 0).Y)
}
