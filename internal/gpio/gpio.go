// Package gpio provides pin drivers for real hardware and a fake for tests.
// The Linux driver uses the GPIO character device; the periph driver works
// wherever periph.io has a host driver.
package gpio

import "github.com/sweeney/pinctl/pin"

// Pin is a driver-owned line that can be driven, sensed and read back.
type Pin interface {
	pin.StatefulIO

	// Close releases the line.
	Close() error
}

// Defaults for the Linux character device driver.
const (
	DefaultChip   = "gpiochip0"
	DefaultOffset = 17 // BCM 17, header pin 11

	consumer = "pinctl"
)
