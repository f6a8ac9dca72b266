package is31fl373x

import "periph.io/x/conn/v3/i2c"

// The IS31FL3737B drives 12 current sink columns by 12 switch rows with a
// contiguous register file. Being the newer revision, it resets through a
// command write rather than a read of the reset register.
var is31fl3737b = variant{
	name:     "IS31FL3737B",
	width:    12,
	height:   12,
	resetCmd: true,
}

// NewIS31FL3737B returns a driver for an IS31FL3737B on the given bus.
// Addressing matches the IS31FL3737: a single ADDR pin, bus addresses
// 0x50, 0x55, 0x5A and 0x5F. No I/O happens until Begin.
func NewIS31FL3737B(bus i2c.Bus, addr AddrPin) *Dev {
	return newDev(bus, i2cAddr3737(addr), is31fl3737b)
}
