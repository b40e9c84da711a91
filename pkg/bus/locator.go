package bus

import (
	"fmt"
	"strings"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
)

// Kind identifies a transport family.
type Kind uint8

const (
	KindUSB Kind = iota + 1
	KindRS232
	KindTCP
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUSB:
		return "USB"
	case KindRS232:
		return "RS232"
	case KindTCP:
		return "TCP"
	default:
		return "UNKNOWN"
	}
}

// Locator is an immutable transport address. Implementations are
// comparable value types, so two locators are equal exactly when == on
// the interface values holds. The registry uses that equality as its only
// deduplication key.
type Locator interface {
	Kind() Kind
	String() string
}

// USBLocator addresses a device by vendor/product and bus position.
type USBLocator struct {
	Vendor  uint16
	Product uint16
	Bus     int
	Address int
}

// NewUSBLocator validates and creates a USB locator.
func NewUSBLocator(vendor, product uint16, busNum, address int) (USBLocator, error) {
	if vendor == 0 {
		return USBLocator{}, fmt.Errorf("%w: usb vendor id is zero", fault.ErrIllegalArgument)
	}
	if busNum < 0 || address < 0 {
		return USBLocator{}, fmt.Errorf("%w: usb position %d:%d", fault.ErrIllegalArgument, busNum, address)
	}
	return USBLocator{Vendor: vendor, Product: product, Bus: busNum, Address: address}, nil
}

func (USBLocator) Kind() Kind { return KindUSB }

func (l USBLocator) String() string {
	return fmt.Sprintf("usb:%04x:%04x@%d.%d", l.Vendor, l.Product, l.Bus, l.Address)
}

// SerialLocator addresses an RS-232 port.
type SerialLocator struct {
	Path string
	Baud int
}

// MaxBaud bounds accepted baud rates.
const MaxBaud = 4_000_000

// NewSerialLocator validates and creates a serial locator.
func NewSerialLocator(path string, baud int) (SerialLocator, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return SerialLocator{}, fmt.Errorf("%w: serial path is empty", fault.ErrIllegalArgument)
	}
	if baud <= 0 || baud > MaxBaud {
		return SerialLocator{}, fmt.Errorf("%w: baud rate %d", fault.ErrIllegalArgument, baud)
	}
	return SerialLocator{Path: path, Baud: baud}, nil
}

func (SerialLocator) Kind() Kind { return KindRS232 }

func (l SerialLocator) String() string {
	return fmt.Sprintf("rs232:%s@%d", l.Path, l.Baud)
}

// TCPLocator addresses a network instrument.
type TCPLocator struct {
	Host string
	Port int
}

// NewTCPLocator validates and creates a TCP locator. Host names are
// lower-cased so equal hosts compare equal.
func NewTCPLocator(host string, port int) (TCPLocator, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return TCPLocator{}, fmt.Errorf("%w: tcp host is empty", fault.ErrIllegalArgument)
	}
	if port <= 0 || port > 65535 {
		return TCPLocator{}, fmt.Errorf("%w: tcp port %d", fault.ErrIllegalArgument, port)
	}
	return TCPLocator{Host: host, Port: port}, nil
}

func (TCPLocator) Kind() Kind { return KindTCP }

func (l TCPLocator) String() string {
	return fmt.Sprintf("tcp:%s:%d", l.Host, l.Port)
}

// Compile-time interface satisfaction checks.
var (
	_ Locator = USBLocator{}
	_ Locator = SerialLocator{}
	_ Locator = TCPLocator{}
)
