package display

import (
	"fmt"
	"image"
	"os"
)

// FramebufferSink writes RGB565 pixels to a Linux framebuffer device such as
// the one fbtft exposes for SPI TFT panels.
type FramebufferSink struct {
	f     *os.File
	width int
	row   []byte
}

// OpenFramebuffer opens device (e.g. /dev/fb1) for a panel width pixels wide.
func OpenFramebuffer(device string, width int) (*FramebufferSink, error) {
	f, err := os.OpenFile(device, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", device, err)
	}
	return &FramebufferSink{f: f, width: width, row: make([]byte, width*2)}, nil
}

// Flush converts the rows inside r to RGB565 and writes them in place.
func (s *FramebufferSink) Flush(img *image.RGBA, r image.Rectangle) error {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		buf := s.row[:r.Dx()*2]
		EncodeRGB565(buf, img, r.Min.X, r.Max.X, y)
		off := int64((y*s.width + r.Min.X) * 2)
		if _, err := s.f.WriteAt(buf, off); err != nil {
			return fmt.Errorf("write framebuffer row %d: %w", y, err)
		}
	}
	return nil
}

// Close releases the device.
func (s *FramebufferSink) Close() error {
	return s.f.Close()
}

// EncodeRGB565 packs pixels [x0, x1) of row y into little-endian RGB565.
func EncodeRGB565(dst []byte, img *image.RGBA, x0, x1, y int) {
	for x := x0; x < x1; x++ {
		i := img.PixOffset(x, y)
		r, g, b := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
		j := (x - x0) * 2
		dst[j] = byte(v)
		dst[j+1] = byte(v >> 8)
	}
}
