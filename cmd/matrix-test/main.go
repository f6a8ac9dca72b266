package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/aykevl/ledsgo"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/somebox/is31fl373x"
)

func main() {
	chipFlag := flag.String("chip", "3737b", "Chip variant (3733, 3737, 3737b)")
	busFlag := flag.String("i2c-bus", "", "I²C bus name or number (default: first available)")
	khzFlag := flag.Int("khz", 0, "I²C bus speed in kHz (0: keep the bus default)")
	addr1Flag := flag.String("addr1", "gnd", "ADDR (or ADDR1) strap: gnd, vcc, sda, scl")
	addr2Flag := flag.String("addr2", "gnd", "ADDR2 strap (IS31FL3733 only)")
	currentFlag := flag.Uint("current", 128, "Global current limit (0-255)")
	brightnessFlag := flag.Uint("brightness", 255, "Master brightness (0-255)")
	gammaFlag := flag.Bool("gamma", false, "Enable gamma correction")
	demoFlag := flag.String("demo", "plasma", "Demo pattern (plasma, fire, sweep, blink)")
	previewFlag := flag.Bool("preview", false, "Render to the terminal instead of hardware")
	fpsFlag := flag.Int("fps", 30, "Frames per second")
	flag.Parse()

	addr1, err := parseStrap(*addr1Flag)
	if err != nil {
		fatal(err)
	}
	addr2, err := parseStrap(*addr2Flag)
	if err != nil {
		fatal(err)
	}

	var (
		newChip       func(i2c.Bus) *is31fl373x.Dev
		width, height int
	)
	switch strings.ToLower(*chipFlag) {
	case "3733":
		width, height = 16, 12
		newChip = func(bus i2c.Bus) *is31fl373x.Dev { return is31fl373x.NewIS31FL3733(bus, addr1, addr2) }
	case "3737":
		width, height = 12, 12
		newChip = func(bus i2c.Bus) *is31fl373x.Dev { return is31fl373x.NewIS31FL3737(bus, addr1) }
	case "3737b":
		width, height = 12, 12
		newChip = func(bus i2c.Bus) *is31fl373x.Dev { return is31fl373x.NewIS31FL3737B(bus, addr1) }
	default:
		fatal(fmt.Errorf("unsupported chip %q", *chipFlag))
	}

	var pattern func(*image.Gray, uint32)
	switch strings.ToLower(*demoFlag) {
	case "plasma":
		pattern = plasma
	case "fire":
		pattern = fire
	case "sweep":
		pattern = sweep
	case "blink":
		pattern = blink
	default:
		fatal(fmt.Errorf("unsupported demo %q", *demoFlag))
	}

	period, err := framePeriod(*fpsFlag)
	if err != nil {
		fatal(err)
	}

	var drawer display.Drawer
	if *previewFlag {
		drawer = screen.New(100)
	} else {
		if _, err := host.Init(); err != nil {
			fatal(err)
		}
		bus, err := i2creg.Open(*busFlag)
		if err != nil {
			fmt.Printf("no I²C bus (%s), rendering to the terminal\n", err)
			drawer = screen.New(100)
		} else {
			defer bus.Close()
			if *khzFlag > 0 {
				if err := bus.SetSpeed(physic.Frequency(*khzFlag) * physic.KiloHertz); err != nil {
					fatal(err)
				}
			}
			dev := newChip(bus)
			dev.SetMasterBrightness(byte(*brightnessFlag))
			dev.SetGammaCorrection(*gammaFlag)
			if err := dev.SetGlobalCurrent(byte(*currentFlag)); err != nil {
				fatal(err)
			}
			if err := dev.Begin(); err != nil {
				fatal(err)
			}
			defer dev.Halt()
			fmt.Printf("using driver: %s\n", dev)
			drawer = dev
		}
	}

	fmt.Printf("using demo: %s at %d fps\n", *demoFlag, *fpsFlag)
	fmt.Println("hit control-c to stop...")
	var (
		frame  = image.NewGray(image.Rect(0, 0, width, height))
		ticker = time.NewTicker(period)
		step   uint32
		frames int
		since  = time.Now()
	)
	defer ticker.Stop()
	for {
		pattern(frame, step)
		if err := drawer.Draw(frame.Bounds(), frame, image.Point{}); err != nil {
			fatal(err)
		}
		step++
		if frames++; time.Since(since) >= 5*time.Second {
			fmt.Printf("%.1f fps\n", float64(frames)/time.Since(since).Seconds())
			frames, since = 0, time.Now()
		}
		<-ticker.C
	}
}

// plasma fills the frame with drifting simplex noise.
func plasma(img *image.Gray, step uint32) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := ledsgo.Noise3(step<<3, uint32(x)<<6, uint32(y)<<6)
			img.SetGray(x, y, color.Gray{Y: uint8(int32(v)/256 + 128)})
		}
	}
}

// fire renders rising heat noise, hottest on the bottom row.
func fire(img *image.Gray, step uint32) {
	b := img.Bounds()
	h := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			heat := int(ledsgo.Noise2(uint32(y)*96-step*12, uint32(x)*96)/256) + 128
			heat -= (h - 1 - y) * 160 / h
			if heat < 0 {
				heat = 0
			}
			img.SetGray(x, y, color.Gray{Y: uint8(heat)})
		}
	}
}

// sweep scans a bright column across the matrix with a fading tail.
func sweep(img *image.Gray, step uint32) {
	b := img.Bounds()
	w := b.Dx()
	pos := int(step) % w
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var v uint8
			if d := (pos - x + w) % w; d < 8 {
				v = 0xFF >> uint(d)
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

// blink alternates the whole matrix on and off, for wiring checks.
func blink(img *image.Gray, step uint32) {
	var v uint8
	if step/8%2 == 0 {
		v = 0xFF
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

// framePeriod converts the fps flag into the frame ticker interval.
func framePeriod(fps int) (time.Duration, error) {
	if fps < 1 {
		return 0, fmt.Errorf("invalid fps %d", fps)
	}
	return time.Second / time.Duration(fps), nil
}

func parseStrap(s string) (is31fl373x.AddrPin, error) {
	switch strings.ToLower(s) {
	case "gnd":
		return is31fl373x.GND, nil
	case "vcc":
		return is31fl373x.VCC, nil
	case "sda":
		return is31fl373x.SDA, nil
	case "scl":
		return is31fl373x.SCL, nil
	}
	return 0, fmt.Errorf("invalid ADDR strap %q", s)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
