package is31fl373x

import "periph.io/x/conn/v3/i2c"

// The IS31FL3733 drives 16 current sink columns by 12 switch rows.
var is31fl3733 = variant{
	name:   "IS31FL3733",
	width:  16,
	height: 12,
}

// NewIS31FL3733 returns a driver for an IS31FL3733 on the given bus. The
// chip has two ADDR pins, each strapped to one of four levels, for 16
// possible bus addresses starting at 0x50. No I/O happens until Begin.
func NewIS31FL3733(bus i2c.Bus, addr1, addr2 AddrPin) *Dev {
	return newDev(bus, i2cAddr3733(addr1, addr2), is31fl3733)
}
