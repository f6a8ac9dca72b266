package pixel

// Buffer holds the pixel intensities of a single LED matrix.
type Buffer struct {
	// Pix are the pixel intensities, indexed y*Width+x.
	Pix []byte

	// Width and Height are the matrix dimensions in pixels.
	Width, Height int
}

// New returns a zeroed buffer of the given dimensions.
func New(w, h int) *Buffer {
	return &Buffer{
		Pix:    make([]byte, w*h),
		Width:  w,
		Height: h,
	}
}

// Len returns the number of pixels in the buffer.
func (p *Buffer) Len() int {
	return len(p.Pix)
}

// Set stores the intensity of the pixel at (x, y). Writes outside the
// buffer are ignored.
func (p *Buffer) Set(x, y int, v byte) {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return
	}
	p.Pix[y*p.Width+x] = v
}

// SetIndex stores the intensity of the pixel at buffer index i. Writes
// outside the buffer are ignored.
func (p *Buffer) SetIndex(i int, v byte) {
	if i < 0 || i >= len(p.Pix) {
		return
	}
	p.Pix[i] = v
}

// At returns the intensity of the pixel at (x, y), or 0 outside the buffer.
func (p *Buffer) At(x, y int) byte {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return 0
	}
	return p.Pix[y*p.Width+x]
}

// AtIndex returns the intensity of the pixel at buffer index i, or 0
// outside the buffer.
func (p *Buffer) AtIndex(i int) byte {
	if i < 0 || i >= len(p.Pix) {
		return 0
	}
	return p.Pix[i]
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

// Fill sets every pixel to the same intensity.
func (p *Buffer) Fill(v byte) {
	for i := range p.Pix {
		p.Pix[i] = v
	}
}

// NonZeroCount returns the number of lit pixels.
func (p *Buffer) NonZeroCount() int {
	var n int
	for _, v := range p.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Sum returns the total of all pixel intensities, saturating at the
// 16-bit maximum.
func (p *Buffer) Sum() uint16 {
	var sum int
	for _, v := range p.Pix {
		sum += int(v)
		if sum >= 0xffff {
			return 0xffff
		}
	}
	return uint16(sum)
}
