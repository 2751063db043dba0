// Package usb opens a DLPC350 through its USB HID interface and exposes it
// as a controller.Channel.
package usb

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/karalabe/hid"
	"github.com/moffa90/go-lcr4500/protocol"
)

// USB identifiers of the LightCrafter 4500.
const (
	VendorID  uint16 = 0x0451
	ProductID uint16 = 0x6401
)

var (
	// ErrNotFound is returned when no matching device is attached.
	ErrNotFound = errors.New("no DLPC350 found")

	// ErrClosed is returned for I/O on a closed device.
	ErrClosed = errors.New("device closed")
)

// Options selects the device to open.
type Options struct {
	// Index selects among several attached devices (0 is the first)
	Index int

	// VendorID and ProductID identify the device
	VendorID  uint16
	ProductID uint16
}

// DefaultOptions selects the first attached LightCrafter 4500.
func DefaultOptions() Options {
	return Options{
		VendorID:  VendorID,
		ProductID: ProductID,
	}
}

// hidDevice is the subset of *hid.Device used by Device.
type hidDevice interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

// Device is an open DLPC350. It implements controller.Channel.
type Device struct {
	info hid.DeviceInfo

	mu     sync.Mutex
	dev    hidDevice
	closed bool
}

// Devices lists the attached devices matching opts.
func Devices(opts Options) []hid.DeviceInfo {
	return hid.Enumerate(opts.VendorID, opts.ProductID)
}

// Open opens the device selected by opts.
func Open(opts Options) (*Device, error) {
	if !hid.Supported() {
		return nil, fmt.Errorf("usb hid not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	infos := Devices(opts)
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w (vendor 0x%04X, product 0x%04X)", ErrNotFound, opts.VendorID, opts.ProductID)
	}
	if opts.Index < 0 || opts.Index >= len(infos) {
		return nil, fmt.Errorf("device index %d out of range [0, %d]", opts.Index, len(infos)-1)
	}

	info := infos[opts.Index]
	dev, err := info.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.Path, err)
	}

	return newDevice(info, dev), nil
}

func newDevice(info hid.DeviceInfo, dev hidDevice) *Device {
	return &Device{info: info, dev: dev}
}

// Do opens the device selected by opts, calls fn and closes the device on
// every path. A close error is joined with the error returned by fn.
//
// Example:
//
//	err := usb.Do(usb.DefaultOptions(), func(dev *usb.Device) error {
//	    return controller.New(dev).VideoMode(ctx)
//	})
func Do(opts Options, fn func(*Device) error) (err error) {
	dev, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, dev.Close())
	}()

	return fn(dev)
}

// Write sends one packet to the OUT endpoint.
func (d *Device) Write(endpoint byte, packet []byte) error {
	if endpoint != protocol.EndpointOut {
		return fmt.Errorf("write to endpoint 0x%02X: only 0x%02X is an OUT endpoint", endpoint, protocol.EndpointOut)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	n, err := d.dev.Write(report(packet))
	if err != nil {
		return err
	}
	if n < len(packet) {
		return io.ErrShortWrite
	}
	return nil
}

// Read reads one reply of up to n bytes from the IN endpoint.
func (d *Device) Read(endpoint byte, n int) ([]byte, error) {
	if endpoint != protocol.EndpointIn {
		return nil, fmt.Errorf("read from endpoint 0x%02X: only 0x%02X is an IN endpoint", endpoint, protocol.EndpointIn)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}

	buf := make([]byte, n)
	got, err := d.dev.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:got], nil
}

// Close releases the device. Calling Close more than once is a no-op.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.dev.Close()
}

func (d *Device) String() string {
	return fmt.Sprintf("usb %04X:%04X %s", d.info.VendorID, d.info.ProductID, d.info.Path)
}

// report prefixes the unnumbered report ID expected by hidapi. The hid
// package already adds it on Windows.
func report(packet []byte) []byte {
	if runtime.GOOS == "windows" {
		return packet
	}
	return append([]byte{0x00}, packet...)
}
