package is31fl373x

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3/display"
)

// Layout is the tiling direction of a Canvas.
type Layout uint8

// Supported tilings.
const (
	Horizontal Layout = iota
	Vertical
)

func (l Layout) String() string {
	if l == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Canvas tiles several devices into one logical surface, routing drawing
// operations to the owning chip and broadcasting whole-surface operations
// to all of them.
//
// The device slice is borrowed: the canvas never allocates, closes or
// replaces member devices. Slots may be nil; every operation except Begin
// skips nil slots silently.
type Canvas struct {
	devices []*Dev
	layout  Layout
	width   int
	height  int
}

// NewCanvas composes the given devices into one surface. For Horizontal
// layouts the widths add up and the height is the tallest member; for
// Vertical layouts the transpose. Nil slots contribute nothing.
func NewCanvas(devices []*Dev, layout Layout) *Canvas {
	c := &Canvas{
		devices: devices,
		layout:  layout,
	}
	for _, d := range devices {
		if d == nil {
			continue
		}
		if layout == Horizontal {
			c.width += d.Width()
			if h := d.Height(); h > c.height {
				c.height = h
			}
		} else {
			if w := d.Width(); w > c.width {
				c.width = w
			}
			c.height += d.Height()
		}
	}
	return c
}

func (c *Canvas) String() string {
	return fmt.Sprintf("canvas %dx%d of %d %s", c.width, c.height, len(c.devices), c.layout)
}

// Width returns the composite width in pixels.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the composite height in pixels.
func (c *Canvas) Height() int {
	return c.height
}

// Layout returns the tiling direction.
func (c *Canvas) Layout() Layout {
	return c.layout
}

// DeviceCount returns the number of registered slots, including nil ones.
func (c *Canvas) DeviceCount() int {
	return len(c.devices)
}

// Device returns the member at index i; nil for a nil slot or an index
// outside the registry.
func (c *Canvas) Device(i int) *Dev {
	if i < 0 || i >= len(c.devices) {
		return nil
	}
	return c.devices[i]
}

// Begin initializes every member device. Unlike the broadcast operations
// it does not tolerate holes: every slot must be non-nil and every device
// must initialize. All devices are attempted before the first error is
// returned.
func (c *Canvas) Begin() error {
	var first error
	for _, d := range c.devices {
		if d == nil {
			if first == nil {
				first = ErrNilDevice
			}
			continue
		}
		if err := d.Begin(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Show flushes every non-nil member. All are attempted; the first error is
// returned.
func (c *Canvas) Show() error {
	var first error
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		if err := d.Show(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Clear zeroes every non-nil member's buffer. No chip I/O happens until
// Show.
func (c *Canvas) Clear() {
	for _, d := range c.devices {
		if d != nil {
			d.Clear()
		}
	}
}

// Halt puts every non-nil member into software shutdown.
func (c *Canvas) Halt() error {
	var first error
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		if err := d.Halt(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SetGlobalCurrent sets the hardware current limit on every non-nil
// member.
func (c *Canvas) SetGlobalCurrent(value byte) error {
	var first error
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		if err := d.SetGlobalCurrent(value); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SetMasterBrightness sets the software brightness factor on every
// non-nil member, affecting subsequent draws.
func (c *Canvas) SetMasterBrightness(value byte) {
	for _, d := range c.devices {
		if d != nil {
			d.SetMasterBrightness(value)
		}
	}
}

// locate resolves the member owning a canvas coordinate, walking the
// registry in order and accumulating member extents along the tiling
// axis. Nil slots span nothing.
func (c *Canvas) locate(x, y int) (*Dev, int, int) {
	if x < 0 || y < 0 {
		return nil, 0, 0
	}
	cursor := 0
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		if c.layout == Horizontal {
			if x < cursor+d.Width() {
				return d, x - cursor, y
			}
			cursor += d.Width()
		} else {
			if y < cursor+d.Height() {
				return d, x, y - cursor
			}
			cursor += d.Height()
		}
	}
	return nil, 0, 0
}

// DrawPixel routes a canvas coordinate to the owning member and draws
// there. Coordinates outside every member are ignored.
func (c *Canvas) DrawPixel(x, y int, value byte) {
	if d, lx, ly := c.locate(x, y); d != nil {
		d.DrawPixel(lx, ly, value)
	}
}

// PixelValue returns the buffered intensity at a canvas coordinate, 0
// where no member owns it.
func (c *Canvas) PixelValue(x, y int) byte {
	if d, lx, ly := c.locate(x, y); d != nil {
		return d.PixelValue(lx, ly)
	}
	return 0
}

// TotalNonZeroPixelCount sums the lit-pixel counts of all members.
func (c *Canvas) TotalNonZeroPixelCount() int {
	var n int
	for _, d := range c.devices {
		if d != nil {
			n += d.NonZeroPixelCount()
		}
	}
	return n
}

// Identify lights each member fully in registration order, holding each
// for the given pause, so the physical chain order can be checked against
// the registry. The canvas is left cleared.
func (c *Canvas) Identify(pause time.Duration) error {
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		d.Fill(0xFF)
		if err := d.Show(); err != nil {
			return err
		}
		time.Sleep(pause)
		d.Clear()
		if err := d.Show(); err != nil {
			return err
		}
	}
	return nil
}

// ColorModel implements image.Image; pixels are 8-bit grays.
func (c *Canvas) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements image.Image.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// At implements image.Image, reporting the buffered intensity as a gray.
func (c *Canvas) At(x, y int) color.Color {
	return color.Gray{Y: c.PixelValue(x, y)}
}

// Set implements draw.Image.
func (c *Canvas) Set(x, y int, col color.Color) {
	c.DrawPixel(x, y, color.GrayModel.Convert(col).(color.Gray).Y)
}

// Draw implements display.Drawer: src is drawn into the member buffers
// and every member is flushed.
func (c *Canvas) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(c, r, src, sp, draw.Src)
	return c.Show()
}

// Interface checks.
var (
	_ display.Drawer = (*Canvas)(nil)
	_ draw.Image     = (*Canvas)(nil)
)
