package is31fl373x

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/somebox/is31fl373x/pixel"
)

// newRecorded returns a quirkless 12x12 device on a recording bus, with
// Begin already run and the init traffic discarded.
func newRecorded(t *testing.T) (*Dev, *i2ctest.Record) {
	t.Helper()
	rec := &i2ctest.Record{}
	d := NewIS31FL3737B(rec, GND)
	require.NoError(t, d.Begin())
	rec.Ops = nil
	return d, rec
}

// newBuffered returns a device of the given variant with an allocated
// buffer but no initialization traffic, for tests that only exercise the
// buffer side.
func newBuffered(v variant, bus i2c.Bus) *Dev {
	d := newDev(bus, 0x50, v)
	d.buf = pixel.New(v.width, v.height)
	return d
}

// begin3737BOps is the exact Begin write sequence of an IS31FL3737B at the
// default global current, for playback scripts.
func begin3737BOps(addr uint16) []i2ctest.IO {
	ops := []i2ctest.IO{
		{Addr: addr, W: []byte{regLock, unlockKey}},
		{Addr: addr, W: []byte{regCommand, pageFunction}},
		{Addr: addr, W: []byte{funcResetB, resetKey}},
		{Addr: addr, W: []byte{regLock, unlockKey}},
		{Addr: addr, W: []byte{regCommand, pageLEDControl}},
	}
	for reg := 0; reg <= int(ledControlLast); reg++ {
		ops = append(ops, i2ctest.IO{Addr: addr, W: []byte{byte(reg), 0xFF}})
	}
	return append(ops,
		i2ctest.IO{Addr: addr, W: []byte{regLock, unlockKey}},
		i2ctest.IO{Addr: addr, W: []byte{regCommand, pageFunction}},
		i2ctest.IO{Addr: addr, W: []byte{funcConfig, configNormalOp}},
		i2ctest.IO{Addr: addr, W: []byte{funcGlobalCurrent, defaultGlobalCurrent}},
		i2ctest.IO{Addr: addr, W: []byte{regLock, unlockKey}},
		i2ctest.IO{Addr: addr, W: []byte{regCommand, pagePWM}},
	)
}

func TestBeginSequence(t *testing.T) {
	rec := &i2ctest.Record{}
	d := NewIS31FL3737B(rec, GND)
	require.NoError(t, d.Begin())

	ops := rec.Ops
	require.Len(t, ops, 35)
	for _, op := range ops {
		assert.Equal(t, uint16(0x50), op.Addr)
	}

	// Software reset, command form.
	assert.Equal(t, []byte{regLock, unlockKey}, ops[0].W)
	assert.Equal(t, []byte{regCommand, pageFunction}, ops[1].W)
	assert.Equal(t, []byte{funcResetB, resetKey}, ops[2].W)

	// Every LED enabled on the control page.
	assert.Equal(t, []byte{regLock, unlockKey}, ops[3].W)
	assert.Equal(t, []byte{regCommand, pageLEDControl}, ops[4].W)
	for i := 0; i <= int(ledControlLast); i++ {
		assert.Equal(t, []byte{byte(i), 0xFF}, ops[5+i].W, "enable write %d", i)
	}

	// Normal operation and current limit on the function page.
	assert.Equal(t, []byte{regLock, unlockKey}, ops[29].W)
	assert.Equal(t, []byte{regCommand, pageFunction}, ops[30].W)
	assert.Equal(t, []byte{funcConfig, configNormalOp}, ops[31].W)
	assert.Equal(t, []byte{funcGlobalCurrent, defaultGlobalCurrent}, ops[32].W)

	// PWM left as the resting page.
	assert.Equal(t, []byte{regLock, unlockKey}, ops[33].W)
	assert.Equal(t, []byte{regCommand, pagePWM}, ops[34].W)
}

// The older chips reset by reading the reset register instead of writing
// a command.
func TestBeginResetRead(t *testing.T) {
	ops := []i2ctest.IO{
		{Addr: 0x53, W: []byte{regLock, unlockKey}},
		{Addr: 0x53, W: []byte{regCommand, pageFunction}},
		{Addr: 0x53, W: []byte{funcReset}},
		{Addr: 0x53, R: []byte{0x00}},
		{Addr: 0x53, W: []byte{regLock, unlockKey}},
		{Addr: 0x53, W: []byte{regCommand, pageLEDControl}},
	}
	for reg := 0; reg <= int(ledControlLast); reg++ {
		ops = append(ops, i2ctest.IO{Addr: 0x53, W: []byte{byte(reg), 0xFF}})
	}
	ops = append(ops,
		i2ctest.IO{Addr: 0x53, W: []byte{regLock, unlockKey}},
		i2ctest.IO{Addr: 0x53, W: []byte{regCommand, pageFunction}},
		i2ctest.IO{Addr: 0x53, W: []byte{funcConfig, configNormalOp}},
		i2ctest.IO{Addr: 0x53, W: []byte{funcGlobalCurrent, 0x40}},
		i2ctest.IO{Addr: 0x53, W: []byte{regLock, unlockKey}},
		i2ctest.IO{Addr: 0x53, W: []byte{regCommand, pagePWM}},
	)

	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	d := NewIS31FL3733(pb, SCL, GND)
	require.NoError(t, d.SetGlobalCurrent(0x40))
	require.NoError(t, d.Begin())
	require.NoError(t, pb.Close())
}

func TestBeginIdempotent(t *testing.T) {
	rec := &i2ctest.Record{}
	d := NewIS31FL3737B(rec, GND)
	require.NoError(t, d.Begin())

	d.DrawPixel(3, 4, 0xAA)
	require.NoError(t, d.Begin())

	assert.Equal(t, byte(0xAA), d.PixelValue(3, 4))
	assert.Equal(t, 1, d.NonZeroPixelCount())
	assert.Len(t, rec.Ops, 70)
}

func TestBeginTransportFailure(t *testing.T) {
	// An exhausted playback fails every transaction.
	d := NewIS31FL3737B(&i2ctest.Playback{DontPanic: true}, GND)
	require.Error(t, d.Begin())

	// The older chips reset by a register read; a write-only bus fails
	// there.
	d = NewIS31FL3733(&i2ctest.Record{}, GND, GND)
	require.Error(t, d.Begin())
}

func TestShow(t *testing.T) {
	d, rec := newRecorded(t)
	d.DrawPixel(0, 0, 100)
	d.DrawPixel(11, 11, 200)
	require.NoError(t, d.Show())

	ops := rec.Ops
	require.Len(t, ops, 2+144)
	assert.Equal(t, []byte{regLock, unlockKey}, ops[0].W)
	assert.Equal(t, []byte{regCommand, pagePWM}, ops[1].W)
	assert.Equal(t, []byte{0x00, 100}, ops[2].W)
	// (11,11) flushes to the last slot of the last row.
	assert.Equal(t, []byte{187, 200}, ops[len(ops)-1].W)

	// The buffer survives the flush.
	assert.Equal(t, byte(100), d.PixelValue(0, 0))
	assert.Equal(t, 2, d.NonZeroPixelCount())
}

// A pixel behind the register gap flushes to its shifted slot while the
// buffer keeps plain row-major indexing.
func TestShowGapRemap(t *testing.T) {
	rec := &i2ctest.Record{}
	d := newBuffered(is31fl3737, rec)

	d.DrawPixel(6, 0, 255)
	assert.Equal(t, byte(255), d.PixelValueByIndex(6))
	require.NoError(t, d.Show())

	var remapped bool
	for _, op := range rec.Ops {
		if len(op.W) == 2 && op.W[0] == 0x08 && op.W[1] == 255 {
			remapped = true
		}
	}
	assert.True(t, remapped, "expected a write of 255 to register 0x08")
}

// An offset can translate pixels past the edge of the register file; they
// are dropped instead of wrapping onto the command and lock registers.
func TestShowOffsetClipping(t *testing.T) {
	d, rec := newRecorded(t)
	d.SetCoordinateOffset(-3, 0)
	d.DrawPixel(0, 0, 0xAA) // translates to register -3
	d.DrawPixel(3, 0, 0x55) // lands on register 0
	require.NoError(t, d.Show())

	// Three columns per row fall off the low edge.
	ops := rec.Ops
	require.Len(t, ops, 2+9*12)
	assert.Equal(t, []byte{0x00, 0x55}, ops[2].W)
	for i, op := range ops[2:] {
		require.Len(t, op.W, 2)
		assert.LessOrEqual(t, op.W[0], byte(pwmLast), "op %d", i+2)
	}

	// The high edge clips the same way.
	d, rec = newRecorded(t)
	d.SetCoordinateOffset(0, 6)
	require.NoError(t, d.Show())
	assert.Len(t, rec.Ops, 2+12*6)
}

func TestShowCustomLayout(t *testing.T) {
	d, rec := newRecorded(t)
	d.SetLayout([]PixelMapEntry{{CS: 1, SW: 1}, {CS: 2, SW: 1}})
	d.SetPixel(0, 0x11)
	d.SetPixel(1, 0x22)
	require.NoError(t, d.Show())

	ops := rec.Ops
	require.Len(t, ops, 4)
	assert.Equal(t, []byte{regLock, unlockKey}, ops[0].W)
	assert.Equal(t, []byte{regCommand, pagePWM}, ops[1].W)
	assert.Equal(t, []byte{0x00, 0x11}, ops[2].W)
	assert.Equal(t, []byte{0x01, 0x22}, ops[3].W)

	assert.True(t, d.CustomLayoutActive())
	assert.Equal(t, 2, d.LayoutSize())

	d.SetLayout(nil)
	assert.False(t, d.CustomLayoutActive())
	assert.Equal(t, 0, d.LayoutSize())
}

// A write that fails mid-flush is skipped; the remaining registers are
// still written and Show reports no error.
func TestShowContinuesOnWriteFailure(t *testing.T) {
	ops := append(begin3737BOps(0x50),
		i2ctest.IO{Addr: 0x50, W: []byte{regLock, unlockKey}},
		i2ctest.IO{Addr: 0x50, W: []byte{regCommand, pagePWM}},
	)
	// Register 0 is missing from the script, so its write fails.
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			if x == 0 && y == 0 {
				continue
			}
			ops = append(ops, i2ctest.IO{Addr: 0x50, W: []byte{byte(y*registerStride + x), 0x40}})
		}
	}

	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	d := NewIS31FL3737B(pb, GND)
	require.NoError(t, d.Begin())
	d.Fill(0x40)
	require.NoError(t, d.Show())

	// Every register after the failed one was still written.
	require.NoError(t, pb.Close())
}

func TestShowAbortsOnPageSelectFailure(t *testing.T) {
	// One pixel write is scripted behind a select that will not match.
	ops := append(begin3737BOps(0x50), i2ctest.IO{Addr: 0x50, W: []byte{0x00, 0x00}})
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	d := NewIS31FL3737B(pb, GND)
	require.NoError(t, d.Begin())

	require.Error(t, d.Show())
	// The flush stopped before the pixel write: the script is not drained.
	require.Error(t, pb.Close())
}

func TestShowBeforeBegin(t *testing.T) {
	rec := &i2ctest.Record{}
	d := NewIS31FL3737B(rec, GND)
	require.NoError(t, d.Show())
	assert.Empty(t, rec.Ops)
}

func TestDrawBeforeBegin(t *testing.T) {
	d := NewIS31FL3737B(&i2ctest.Record{}, GND)
	d.DrawPixel(0, 0, 255)
	d.SetPixel(0, 255)
	d.Clear()
	d.Fill(255)
	assert.Equal(t, byte(0), d.PixelValue(0, 0))
	assert.Equal(t, 0, d.NonZeroPixelCount())
	assert.Equal(t, uint16(0), d.PixelSum())
}

func TestBrightnessScaling(t *testing.T) {
	d := newBuffered(is31fl3737b, &i2ctest.Record{})

	d.SetMasterBrightness(128)
	d.DrawPixel(0, 0, 200)
	assert.Equal(t, byte(100), d.PixelValue(0, 0))

	d.SetPixel(1, 200)
	assert.Equal(t, byte(100), d.PixelValueByIndex(1))

	// Scaling happens at draw time; a later brightness change leaves
	// buffered pixels alone.
	d.SetMasterBrightness(0)
	assert.Equal(t, byte(100), d.PixelValue(0, 0))
	d.DrawPixel(2, 0, 200)
	assert.Equal(t, byte(0), d.PixelValue(2, 0))

	d.SetMasterBrightness(255)
	d.DrawPixel(3, 0, 200)
	assert.Equal(t, byte(200), d.PixelValue(3, 0))
}

func TestOutOfBoundsDraw(t *testing.T) {
	d := newBuffered(is31fl3733, &i2ctest.Record{})
	d.DrawPixel(0, 0, 50)
	count, sum := d.NonZeroPixelCount(), d.PixelSum()

	d.DrawPixel(-1, 0, 255)
	d.DrawPixel(0, -1, 255)
	d.DrawPixel(16, 0, 255)
	d.DrawPixel(0, 12, 255)
	d.DrawPixel(1000, 1000, 255)
	d.SetPixel(-1, 255)
	d.SetPixel(192, 255)

	assert.Equal(t, count, d.NonZeroPixelCount())
	assert.Equal(t, sum, d.PixelSum())
	assert.Equal(t, byte(0), d.PixelValue(-1, 0))
	assert.Equal(t, byte(0), d.PixelValue(16, 0))
	assert.Equal(t, byte(0), d.PixelValueByIndex(192))
}

func TestClear(t *testing.T) {
	d := newBuffered(is31fl3737b, &i2ctest.Record{})
	d.Fill(0xFF)
	require.Equal(t, 144, d.NonZeroPixelCount())

	d.Clear()
	assert.Equal(t, 0, d.NonZeroPixelCount())
	assert.Equal(t, uint16(0), d.PixelSum())
}

func TestSetGlobalCurrent(t *testing.T) {
	rec := &i2ctest.Record{}
	d := NewIS31FL3737B(rec, GND)

	// Before Begin the value is only recorded.
	require.NoError(t, d.SetGlobalCurrent(0x20))
	assert.Equal(t, byte(0x20), d.GlobalCurrent())
	assert.Empty(t, rec.Ops)

	require.NoError(t, d.Begin())
	assert.Equal(t, []byte{funcGlobalCurrent, 0x20}, rec.Ops[32].W)
	rec.Ops = nil

	// After Begin it is written immediately, ending back on the PWM page.
	require.NoError(t, d.SetGlobalCurrent(0x42))
	ops := rec.Ops
	require.Len(t, ops, 5)
	assert.Equal(t, []byte{regCommand, pageFunction}, ops[1].W)
	assert.Equal(t, []byte{funcGlobalCurrent, 0x42}, ops[2].W)
	assert.Equal(t, []byte{regCommand, pagePWM}, ops[4].W)
}

func TestHalt(t *testing.T) {
	d, rec := newRecorded(t)
	require.NoError(t, d.Halt())

	ops := rec.Ops
	require.Len(t, ops, 5)
	assert.Equal(t, []byte{regCommand, pageFunction}, ops[1].W)
	assert.Equal(t, []byte{funcConfig, 0x00}, ops[2].W)
	assert.Equal(t, []byte{regCommand, pagePWM}, ops[4].W)
}

func TestGammaCorrection(t *testing.T) {
	d := newBuffered(is31fl3737b, &i2ctest.Record{})

	d.SetGammaCorrection(true)
	d.DrawPixel(0, 0, 128)
	assert.Equal(t, gammaTable[128], d.PixelValue(0, 0))

	d.SetGammaCorrection(false)
	d.DrawPixel(1, 0, 128)
	assert.Equal(t, byte(128), d.PixelValue(1, 0))
}

func TestDrawImage(t *testing.T) {
	d, rec := newRecorded(t)

	src := image.NewGray(image.Rect(0, 0, 12, 12))
	src.SetGray(2, 3, color.Gray{Y: 0x7F})
	require.NoError(t, d.Draw(d.Bounds(), src, image.Point{}))

	assert.Equal(t, byte(0x7F), d.PixelValue(2, 3))
	assert.Equal(t, color.Gray{Y: 0x7F}, d.At(2, 3))
	assert.NotEmpty(t, rec.Ops)
}

func TestSetViaImageDraw(t *testing.T) {
	d := newBuffered(is31fl3733, &i2ctest.Record{})

	draw.Draw(d, image.Rect(0, 0, 2, 1), image.NewUniform(color.Gray{Y: 0xC0}), image.Point{}, draw.Src)
	assert.Equal(t, byte(0xC0), d.PixelValue(0, 0))
	assert.Equal(t, byte(0xC0), d.PixelValue(1, 0))
	assert.Equal(t, 2, d.NonZeroPixelCount())
}

func TestString(t *testing.T) {
	d := NewIS31FL3733(nil, GND, VCC)
	assert.Equal(t, "IS31FL3733 16x12 at 0x54", d.String())
	assert.Equal(t, "IS31FL3737B 12x12 at 0x5f", NewIS31FL3737B(nil, VCC).String())
}
