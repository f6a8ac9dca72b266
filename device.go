package is31fl373x

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"

	"github.com/somebox/is31fl373x/pixel"
)

// Power-on defaults, applied until the caller overrides them.
const (
	defaultGlobalCurrent = 0x80
	defaultBrightness    = 0xFF
)

// resetSettle is the wait after a software reset before the register file
// may be accessed again.
const resetSettle = 10 * time.Millisecond

// pwmLast is the last valid register on the PWM page, 12 switch rows of 16
// column slots.
const pwmLast = 0xBF

// PixelMapEntry maps one buffer position to a chip output, in the 1-based
// CS (current sink column) and SW (switch row) numbering of the datasheet.
type PixelMapEntry struct {
	CS, SW uint8
}

// variant describes one chip of the family.
type variant struct {
	name   string
	width  int
	height int

	// csGap marks register files that reserve address space in the CS7..CS12
	// band for column pins the package does not bond out.
	csGap bool

	// resetCmd marks chips that reset by a command write instead of a read
	// of the reset register.
	resetCmd bool
}

// Dev is a driver for a single IS31FL373x chip.
//
// Drawing operations only touch the in-memory pixel buffer; Show flushes
// the buffer to the chip. Dev is not safe for concurrent use.
type Dev struct {
	c       conn.Conn
	variant variant
	addr    uint16

	buf        *pixel.Buffer
	current    byte // global current control register
	brightness byte // software master brightness
	gamma      bool
	csOffset   int
	swOffset   int
	layout     []PixelMapEntry
}

func newDev(bus i2c.Bus, addr uint16, v variant) *Dev {
	return &Dev{
		c:          &i2c.Dev{Bus: bus, Addr: addr},
		variant:    v,
		addr:       addr,
		current:    defaultGlobalCurrent,
		brightness: defaultBrightness,
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s %dx%d at %#02x", d.variant.name, d.variant.width, d.variant.height, d.addr)
}

// Width returns the number of columns.
func (d *Dev) Width() int {
	return d.variant.width
}

// Height returns the number of rows.
func (d *Dev) Height() int {
	return d.variant.height
}

// I2CAddress returns the 7-bit bus address derived from the ADDR straps.
func (d *Dev) I2CAddress() uint16 {
	return d.addr
}

// writeRegister writes a register on the currently selected page.
func (d *Dev) writeRegister(reg, value byte) error {
	return d.c.Tx([]byte{reg, value}, nil)
}

// readRegister reads a register on the currently selected page: a one byte
// write addressing the register, then a one byte read.
func (d *Dev) readRegister(reg byte) (byte, error) {
	if err := d.c.Tx([]byte{reg}, nil); err != nil {
		return 0, err
	}
	var buf [1]byte
	if err := d.c.Tx(nil, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// selectPage unlocks the command register and selects a register page. The
// chip relocks after every page select, so the unlock is repeated each
// time.
func (d *Dev) selectPage(page byte) error {
	if err := d.writeRegister(regLock, unlockKey); err != nil {
		return err
	}
	return d.writeRegister(regCommand, page)
}

// Reset performs a software reset, returning every register to its
// power-on default, and waits for the chip to settle. The chip is left in
// shutdown; Begin brings it back up.
func (d *Dev) Reset() error {
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}
	if d.variant.resetCmd {
		if err := d.writeRegister(funcResetB, resetKey); err != nil {
			return err
		}
	} else if _, err := d.readRegister(funcReset); err != nil {
		return err
	}
	time.Sleep(resetSettle)
	return nil
}

// Begin allocates the pixel buffer and initializes the chip: software
// reset, every LED enabled, normal operation at the configured global
// current, and the PWM page left selected as the resting page for Show.
//
// Begin may be called again to reinitialize the hardware; an existing
// buffer and its contents are kept.
func (d *Dev) Begin() error {
	if d.buf == nil {
		d.buf = pixel.New(d.variant.width, d.variant.height)
	}
	if err := d.Reset(); err != nil {
		return err
	}

	// Enable all LEDs.
	if err := d.selectPage(pageLEDControl); err != nil {
		return err
	}
	for reg := byte(0); reg <= ledControlLast; reg++ {
		if err := d.writeRegister(reg, 0xFF); err != nil {
			return err
		}
	}

	// Leave shutdown and set the current limit.
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}
	if err := d.writeRegister(funcConfig, configNormalOp); err != nil {
		return err
	}
	if err := d.writeRegister(funcGlobalCurrent, d.current); err != nil {
		return err
	}

	return d.selectPage(pagePWM)
}

// Halt blanks the chip by putting it into software shutdown. The pixel
// buffer is kept; Begin restores operation. Halt implements conn.Resource.
func (d *Dev) Halt() error {
	if d.buf == nil {
		return nil
	}
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}
	if err := d.writeRegister(funcConfig, 0x00); err != nil {
		return err
	}
	return d.selectPage(pagePWM)
}

// registerFor converts 1-based CS/SW numbers, offsets already applied, to
// a linear register offset on the LED control and PWM pages.
func (d *Dev) registerFor(cs, sw int) int {
	if d.variant.csGap && cs >= 7 && cs <= 12 {
		cs += 2
	}
	return (sw-1)*registerStride + (cs - 1)
}

// CoordToRegister converts 0-based pixel coordinates to the linear
// register offset used on the PWM page. It assumes coordinates inside the
// matrix; bounds checking is the caller's concern.
func (d *Dev) CoordToRegister(x, y int) int {
	return d.registerFor(x+1+d.csOffset, y+1+d.swOffset)
}

// RegisterToCoord is the inverse of CoordToRegister.
func (d *Dev) RegisterToCoord(index int) (x, y int) {
	cs := index%registerStride + 1
	if d.variant.csGap && cs >= 9 && cs <= 14 {
		cs -= 2
	}
	return cs - 1 - d.csOffset, index/registerStride - d.swOffset
}

// scale applies gamma correction and master brightness to an intensity.
func (d *Dev) scale(v byte) byte {
	if d.gamma {
		v = gammaTable[v]
	}
	return byte(int(v) * int(d.brightness) / 255)
}

// DrawPixel sets the pixel at (x, y), scaled by the master brightness.
// Draws outside the matrix are ignored. The chip is not written until
// Show.
func (d *Dev) DrawPixel(x, y int, value byte) {
	if d.buf == nil || x < 0 || y < 0 || x >= d.variant.width || y >= d.variant.height {
		return
	}
	d.buf.Set(x, y, d.scale(value))
}

// SetPixel sets the pixel at a raw buffer index, scaled by the master
// brightness. With a custom layout active, index i addresses layout entry
// i. Writes outside the buffer are ignored.
func (d *Dev) SetPixel(index int, value byte) {
	if d.buf == nil {
		return
	}
	d.buf.SetIndex(index, d.scale(value))
}

// Clear zeroes the pixel buffer without touching the chip.
func (d *Dev) Clear() {
	if d.buf != nil {
		d.buf.Clear()
	}
}

// Fill sets every pixel to the same intensity, scaled like DrawPixel.
func (d *Dev) Fill(value byte) {
	if d.buf != nil {
		d.buf.Fill(d.scale(value))
	}
}

// Show flushes the pixel buffer to the chip's PWM page. The buffer is
// preserved. Pixels whose translated register falls outside the page, as
// a coordinate offset can arrange, are dropped. A failed page select
// aborts; a failed single register write is skipped and the flush
// continues. Show is a no-op before Begin.
func (d *Dev) Show() error {
	if d.buf == nil {
		return nil
	}
	if err := d.selectPage(pagePWM); err != nil {
		return err
	}
	if d.CustomLayoutActive() {
		for i, e := range d.layout {
			reg := d.registerFor(int(e.CS)+d.csOffset, int(e.SW)+d.swOffset)
			if reg < 0 || reg > pwmLast {
				continue
			}
			_ = d.writeRegister(byte(reg), d.buf.AtIndex(i))
		}
		return nil
	}
	for y := 0; y < d.variant.height; y++ {
		for x := 0; x < d.variant.width; x++ {
			reg := d.CoordToRegister(x, y)
			if reg < 0 || reg > pwmLast {
				continue
			}
			_ = d.writeRegister(byte(reg), d.buf.At(x, y))
		}
	}
	return nil
}

// SetGlobalCurrent sets the hardware current limit for all LEDs. Before
// Begin the value is recorded and applied during initialization; after
// Begin it is written to the chip immediately.
func (d *Dev) SetGlobalCurrent(value byte) error {
	d.current = value
	if d.buf == nil {
		return nil
	}
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}
	if err := d.writeRegister(funcGlobalCurrent, value); err != nil {
		return err
	}
	return d.selectPage(pagePWM)
}

// SetMasterBrightness sets the software scaling factor applied to
// subsequent draws. Pixels already in the buffer keep their old scaling;
// redraw to apply the new level.
func (d *Dev) SetMasterBrightness(value byte) {
	d.brightness = value
}

// SetGammaCorrection toggles perceptual gamma correction on subsequent
// draws.
func (d *Dev) SetGammaCorrection(on bool) {
	d.gamma = on
}

// SetCoordinateOffset shifts the CS and SW numbering used in coordinate
// translation, for boards whose first populated column or row is not
// CS1/SW1. Only subsequent translations are affected.
func (d *Dev) SetCoordinateOffset(cs, sw int) {
	d.csOffset = cs
	d.swOffset = sw
}

// SetLayout installs a custom pixel layout: buffer index i maps to chip
// output layout[i] instead of the rectangular row-major scan. The slice is
// borrowed, not copied. Pass nil to restore the rectangular layout.
func (d *Dev) SetLayout(layout []PixelMapEntry) {
	d.layout = layout
}

// CustomLayoutActive reports whether a custom layout is installed.
func (d *Dev) CustomLayoutActive() bool {
	return len(d.layout) > 0
}

// LayoutSize returns the number of entries in the custom layout, 0 when
// none is installed.
func (d *Dev) LayoutSize() int {
	return len(d.layout)
}

// PixelValue returns the buffered intensity at (x, y), 0 outside the
// matrix.
func (d *Dev) PixelValue(x, y int) byte {
	if d.buf == nil {
		return 0
	}
	return d.buf.At(x, y)
}

// PixelValueByIndex returns the buffered intensity at a raw buffer index,
// 0 outside the buffer.
func (d *Dev) PixelValueByIndex(index int) byte {
	if d.buf == nil {
		return 0
	}
	return d.buf.AtIndex(index)
}

// NonZeroPixelCount returns the number of lit pixels in the buffer.
func (d *Dev) NonZeroPixelCount() int {
	if d.buf == nil {
		return 0
	}
	return d.buf.NonZeroCount()
}

// PixelSum returns the sum of all buffered intensities, saturating at the
// 16-bit maximum.
func (d *Dev) PixelSum() uint16 {
	if d.buf == nil {
		return 0
	}
	return d.buf.Sum()
}

// GlobalCurrent returns the configured global current control value.
func (d *Dev) GlobalCurrent() byte {
	return d.current
}

// MasterBrightness returns the current software brightness factor.
func (d *Dev) MasterBrightness() byte {
	return d.brightness
}

// ColorModel implements image.Image; pixels are 8-bit grays.
func (d *Dev) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements image.Image.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.variant.width, d.variant.height)
}

// At implements image.Image, reporting the buffered intensity as a gray.
func (d *Dev) At(x, y int) color.Color {
	return color.Gray{Y: d.PixelValue(x, y)}
}

// Set implements draw.Image, so the standard image/draw and font packages
// can render straight into the buffer.
func (d *Dev) Set(x, y int, c color.Color) {
	d.DrawPixel(x, y, color.GrayModel.Convert(c).(color.Gray).Y)
}

// Draw implements display.Drawer: src is drawn into the buffer and the
// buffer is flushed to the chip.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d, r, src, sp, draw.Src)
	return d.Show()
}

// Interface checks.
var (
	_ conn.Resource  = (*Dev)(nil)
	_ display.Drawer = (*Dev)(nil)
	_ draw.Image     = (*Dev)(nil)
)
