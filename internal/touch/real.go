package touch

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// Conn is a half-duplex register transport. Both spi.Conn and *i2c.Dev
// satisfy it.
type Conn interface {
	Tx(w, r []byte) error
}

// XPT2046 control bytes (12-bit, differential, reference on between reads).
const (
	xptReadZ1 = 0xB1
	xptReadZ2 = 0xC1
	xptReadX  = 0xD1
	xptReadY  = 0x91
)

// ResistiveConfig is the raw-to-screen calibration of a resistive panel.
type ResistiveConfig struct {
	MinX, MaxX int
	MinY, MaxY int
	// Pressure is the minimum Z reading treated as a touch.
	Pressure int
	Screen   Screen
}

// Resistive samples an XPT2046 controller.
type Resistive struct {
	conn   Conn
	closer io.Closer
	cfg    ResistiveConfig
}

// NewResistive creates a sampler on an already connected transport.
func NewResistive(conn Conn, cfg ResistiveConfig) *Resistive {
	return &Resistive{conn: conn, cfg: cfg}
}

// OpenResistive opens the named SPI port (empty for the first one).
// host.Init must have been called.
func OpenResistive(port string, cfg ResistiveConfig) (*Resistive, error) {
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", port, err)
	}
	c, err := p.Connect(2*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}
	r := NewResistive(c, cfg)
	r.closer = p
	return r, nil
}

// Sample reads pressure and position.
func (r *Resistive) Sample() (Point, bool, error) {
	z1, err := r.read(xptReadZ1)
	if err != nil {
		return Point{}, false, err
	}
	z2, err := r.read(xptReadZ2)
	if err != nil {
		return Point{}, false, err
	}
	if z1+4095-z2 < r.cfg.Pressure {
		return Point{}, false, nil
	}

	x, err := r.read(xptReadX)
	if err != nil {
		return Point{}, false, err
	}
	y, err := r.read(xptReadY)
	if err != nil {
		return Point{}, false, err
	}

	p := Point{
		X: scale(x, r.cfg.MinX, r.cfg.MaxX, r.cfg.Screen.Width),
		Y: scale(y, r.cfg.MinY, r.cfg.MaxY, r.cfg.Screen.Height),
	}
	return r.cfg.Screen.Clamp(p), true, nil
}

func (r *Resistive) read(cmd byte) (int, error) {
	w := []byte{cmd, 0, 0}
	rx := make([]byte, 3)
	if err := r.conn.Tx(w, rx); err != nil {
		return 0, fmt.Errorf("%w: xpt2046 cmd 0x%02X: %v", ErrInputFault, cmd, err)
	}
	return (int(rx[1])<<8 | int(rx[2])) >> 3, nil
}

// Close releases the SPI port.
func (r *Resistive) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// CST816S registers.
const (
	CST816SAddr    = 0x15
	cstRegFingers  = 0x02
	cstRegChipInfo = 0xA7
)

// Capacitive samples a CST816S controller mounted in landscape.
type Capacitive struct {
	conn   Conn
	closer io.Closer
	screen Screen
}

// NewCapacitive creates a sampler on an already connected transport.
func NewCapacitive(conn Conn, screen Screen) *Capacitive {
	return &Capacitive{conn: conn, screen: screen}
}

// OpenCapacitive opens the named I2C bus (empty for the first one).
// host.Init must have been called and the controller released from reset.
func OpenCapacitive(bus string, screen Screen) (*Capacitive, error) {
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", bus, err)
	}
	c := NewCapacitive(&i2c.Dev{Bus: b, Addr: CST816SAddr}, screen)
	c.closer = b
	return c, nil
}

// ChipInfo reads chip ID, project ID and firmware version.
func (c *Capacitive) ChipInfo() (chipID, project, firmware byte, err error) {
	r := make([]byte, 3)
	if err := c.conn.Tx([]byte{cstRegChipInfo}, r); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: cst816s chip info: %v", ErrInputFault, err)
	}
	return r[0], r[1], r[2], nil
}

// Sample reads the finger count and first touch point.
func (c *Capacitive) Sample() (Point, bool, error) {
	r := make([]byte, 5)
	if err := c.conn.Tx([]byte{cstRegFingers}, r); err != nil {
		return Point{}, false, fmt.Errorf("%w: cst816s read: %v", ErrInputFault, err)
	}
	if r[0] == 0 {
		return Point{}, false, nil
	}
	rawX := int(r[1]&0x0F)<<8 | int(r[2])
	rawY := int(r[3]&0x0F)<<8 | int(r[4])

	// The panel is portrait; the display runs in landscape.
	p := Point{X: rawY, Y: c.screen.Height - rawX}
	return c.screen.Clamp(p), true, nil
}

// Close releases the I2C bus.
func (c *Capacitive) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
