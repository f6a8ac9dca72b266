// Package is31fl373x contains a driver for the Lumissil IS31FL373x family
// of I²C matrix LED controllers: the IS31FL3733 (16×12), the IS31FL3737
// (12×12) and the IS31FL3737B (12×12).
//
// The chips share one register model: a command register selects one of
// four register pages (LED on/off control, PWM, auto-breath and function),
// and every page switch must be preceded by a write of the unlock value to
// the lock register. Pixels are drawn into an in-memory buffer and flushed
// to the PWM page with Show.
//
// A Dev drives one chip. A Canvas tiles several chips into a single
// logical surface. Both implement image/draw.Image and periph.io's
// display.Drawer, so text and graphics can be rendered with the standard
// image packages and pushed to the LEDs in one call.
package is31fl373x

import "errors"

// Errors
var (
	ErrNilDevice = errors.New("is31fl373x: nil device in canvas")
)

// Every chip in the family locks the command register after each access.
// Writing the unlock value to the lock register releases it for exactly
// one page select.
const (
	regCommand = 0xFD // page select
	regLock    = 0xFE // command register write lock
	unlockKey  = 0xC5

	pageLEDControl = 0x00 // LED on/off bits
	pagePWM        = 0x01 // one intensity byte per LED
	pageAutoBreath = 0x02 // ABM timing (unused by this driver)
	pageFunction   = 0x03 // configuration
)

// Function page registers.
const (
	funcConfig        = 0x00
	funcGlobalCurrent = 0x01
	funcReset         = 0x11 // read to reset (IS31FL3733, IS31FL3737)
	funcResetB        = 0x3F // command reset (IS31FL3737B)

	configNormalOp = 0x01 // SSD bit clear keeps the chip in shutdown
	resetKey       = 0xAE
)

// The register file reserves 16 column slots per switch row on the LED
// control and PWM pages, also on the 12-column chips.
const registerStride = 16

// ledControlLast is the last LED on/off register on the control page, two
// bytes of enable bits for each of the 12 switch rows.
const ledControlLast = 0x17

// AddrPin is the level an ADDR pin is strapped to.
type AddrPin uint8

// ADDR pin straps.
const (
	GND AddrPin = iota
	VCC
	SDA
	SCL
)

func (p AddrPin) String() string {
	switch p {
	case GND:
		return "GND"
	case VCC:
		return "VCC"
	case SDA:
		return "SDA"
	case SCL:
		return "SCL"
	}
	return "?"
}

// i2cAddr3733 packs the two ADDR straps of an IS31FL3733 into its 7-bit
// bus address: two bits per pin, ADDR2 in the high pair.
func i2cAddr3733(addr1, addr2 AddrPin) uint16 {
	return 0x50 | uint16(addr2&0x03)<<2 | uint16(addr1&0x03)
}

// addrPattern holds the 4-bit ADDR encoding of the single-pin chips. The
// levels select non-contiguous patterns, not the enumerator ordinals, so
// the reachable addresses are 0x50, 0x55, 0x5A and 0x5F.
var addrPattern = [4]uint16{
	GND: 0x0,
	VCC: 0xF,
	SDA: 0xA,
	SCL: 0x5,
}

// i2cAddr3737 packs the single ADDR strap of an IS31FL3737 or IS31FL3737B
// into its 7-bit bus address.
func i2cAddr3737(addr AddrPin) uint16 {
	return 0x50 | addrPattern[addr&0x03]
}
