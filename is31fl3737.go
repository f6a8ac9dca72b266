package is31fl373x

import "periph.io/x/conn/v3/i2c"

// The IS31FL3737 drives 12 current sink columns by 12 switch rows. Its
// register file is laid out like the 16-column IS31FL3733's: the columns
// the package bonds out as CS7 through CS12 sit on the register slots of
// CS9 through CS14, leaving a two-slot hole in every row.
var is31fl3737 = variant{
	name:   "IS31FL3737",
	width:  12,
	height: 12,
	csGap:  true,
}

// NewIS31FL3737 returns a driver for an IS31FL3737 on the given bus. The
// chip has a single ADDR pin strapped to one of four levels, for the bus
// addresses 0x50, 0x55, 0x5A and 0x5F. No I/O happens until Begin.
func NewIS31FL3737(bus i2c.Bus, addr AddrPin) *Dev {
	return newDev(bus, i2cAddr3737(addr), is31fl3737)
}
