// Package gpio provides GPIO outputs with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Output drives a single GPIO line.
type Output interface {
	// Set drives the line high (true) or low (false).
	Set(on bool) error

	// Close releases the line.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinBacklight = 18 // TFT backlight enable
	DefaultPinTouchRST  = 25 // CST816S reset (active low)
)

// Reset timings for the CST816S.
const (
	ResetLow  = 20 * time.Millisecond
	ResetBoot = 100 * time.Millisecond
)

// PulseReset holds an active-low reset line low, releases it and waits for
// the device to boot. sleep is injectable for tests.
func PulseReset(out Output, sleep func(time.Duration)) error {
	if err := out.Set(false); err != nil {
		return err
	}
	sleep(ResetLow)
	if err := out.Set(true); err != nil {
		return err
	}
	sleep(ResetBoot)
	return nil
}
