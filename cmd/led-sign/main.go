package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/somebox/is31fl373x"
)

func main() {
	textFlag := flag.String("text", "Hello, Gophers!", "Text to scroll")
	chipFlag := flag.String("chip", "3737b", "Chip variant (3733, 3737, 3737b)")
	addrsFlag := flag.String("addrs", "gnd,vcc,sda", "ADDR straps per chip, comma separated (addr1:addr2 for the IS31FL3733)")
	busFlag := flag.String("i2c-bus", "", "I²C bus name or number (default: first available)")
	khzFlag := flag.Int("khz", 0, "I²C bus speed in kHz (0: keep the bus default)")
	verticalFlag := flag.Bool("vertical", false, "Stack chips vertically instead of side by side")
	currentFlag := flag.Uint("current", 128, "Global current limit (0-255)")
	brightnessFlag := flag.Uint("brightness", 255, "Master brightness (0-255)")
	gammaFlag := flag.Bool("gamma", true, "Enable gamma correction")
	pixelFontFlag := flag.Bool("pixel-font", false, "Use the built-in 7x13 pixel font instead of anti-aliased text")
	sizeFlag := flag.Float64("size", 11, "Font size in points for anti-aliased text")
	speedFlag := flag.Int("speed", 20, "Scroll steps per second")
	identifyFlag := flag.Bool("identify", false, "Flash each chip in canvas order, then exit")
	previewFlag := flag.Bool("preview", false, "Render to the terminal instead of hardware")
	flag.Parse()

	straps, err := parseStraps(*addrsFlag)
	if err != nil {
		fatal(err)
	}
	if len(straps) == 0 {
		fatal(errors.New("at least one ADDR strap is required"))
	}

	var (
		newChip      func(i2c.Bus, [2]is31fl373x.AddrPin) *is31fl373x.Dev
		chipW, chipH int
	)
	switch strings.ToLower(*chipFlag) {
	case "3733":
		chipW, chipH = 16, 12
		newChip = func(bus i2c.Bus, s [2]is31fl373x.AddrPin) *is31fl373x.Dev {
			return is31fl373x.NewIS31FL3733(bus, s[0], s[1])
		}
	case "3737":
		chipW, chipH = 12, 12
		newChip = func(bus i2c.Bus, s [2]is31fl373x.AddrPin) *is31fl373x.Dev {
			return is31fl373x.NewIS31FL3737(bus, s[0])
		}
	case "3737b":
		chipW, chipH = 12, 12
		newChip = func(bus i2c.Bus, s [2]is31fl373x.AddrPin) *is31fl373x.Dev {
			return is31fl373x.NewIS31FL3737B(bus, s[0])
		}
	default:
		fatal(fmt.Errorf("unsupported chip %q", *chipFlag))
	}

	period, err := scrollPeriod(*speedFlag)
	if err != nil {
		fatal(err)
	}

	layout := is31fl373x.Horizontal
	width, height := chipW*len(straps), chipH
	if *verticalFlag {
		layout = is31fl373x.Vertical
		width, height = chipW, chipH*len(straps)
	}

	var (
		drawer display.Drawer
		canvas *is31fl373x.Canvas
	)
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
			devs := make([]*is31fl373x.Dev, len(straps))
			for i, s := range straps {
				devs[i] = newChip(bus, s)
			}
			canvas = is31fl373x.NewCanvas(devs, layout)
			canvas.SetMasterBrightness(byte(*brightnessFlag))
			for i := 0; i < canvas.DeviceCount(); i++ {
				canvas.Device(i).SetGammaCorrection(*gammaFlag)
			}
			if err := canvas.SetGlobalCurrent(byte(*currentFlag)); err != nil {
				fatal(err)
			}
			if err := canvas.Begin(); err != nil {
				fatal(err)
			}
			defer canvas.Halt()
			fmt.Printf("using canvas: %s\n", canvas)
			drawer = canvas
		}
	}

	if *identifyFlag {
		if canvas == nil {
			fatal(errors.New("identify requires hardware"))
		}
		fmt.Println("flashing chips in canvas order...")
		if err := canvas.Identify(500 * time.Millisecond); err != nil {
			fatal(err)
		}
		return
	}

	strip, textW, err := renderText(*textFlag, height, width, *pixelFontFlag, *sizeFlag)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("scrolling %q (%d px wide) over %dx%d\n", *textFlag, textW, width, height)
	fmt.Println("hit control-c to stop...")

	var (
		bounds = image.Rect(0, 0, width, height)
		cycle  = textW + width
		off    int
		ticker = time.NewTicker(period)
	)
	defer ticker.Stop()
	for {
		if err := drawer.Draw(bounds, strip, image.Pt(off, 0)); err != nil {
			fatal(err)
		}
		off = (off + 1) % cycle
		<-ticker.C
	}
}

// renderText draws the message once into a strip image padded with one blank
// panel width on either side, so the scroll window never leaves the strip.
func renderText(text string, h, pad int, pixelFont bool, size float64) (*image.Gray, int, error) {
	if pixelFont {
		textW := font.MeasureString(basicfont.Face7x13, text).Ceil()
		strip := image.NewGray(image.Rect(0, 0, textW+2*pad, h))
		d := font.Drawer{
			Dst:  strip,
			Src:  image.White,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(pad, h-2),
		}
		d.DrawString(text)
		return strip, textW, nil
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, 0, err
	}
	textW := font.MeasureString(truetype.NewFace(f, &truetype.Options{Size: size}), text).Ceil()
	strip := image.NewGray(image.Rect(0, 0, textW+2*pad, h))
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(size)
	c.SetClip(strip.Bounds())
	c.SetDst(strip)
	c.SetSrc(image.White)
	if _, err := c.DrawString(text, freetype.Pt(pad, h-2)); err != nil {
		return nil, 0, err
	}
	return strip, textW, nil
}

// scrollPeriod converts scroll steps per second into the ticker interval.
func scrollPeriod(speed int) (time.Duration, error) {
	if speed < 1 {
		return 0, fmt.Errorf("invalid speed %d", speed)
	}
	return time.Second / time.Duration(speed), nil
}

func parseStraps(s string) ([][2]is31fl373x.AddrPin, error) {
	var straps [][2]is31fl373x.AddrPin
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		parts := strings.SplitN(tok, ":", 2)
		a1, err := parseStrap(parts[0])
		if err != nil {
			return nil, err
		}
		a2 := is31fl373x.GND
		if len(parts) == 2 {
			if a2, err = parseStrap(parts[1]); err != nil {
				return nil, err
			}
		}
		straps = append(straps, [2]is31fl373x.AddrPin{a1, a2})
	}
	return straps, nil
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
