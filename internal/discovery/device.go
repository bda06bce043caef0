package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Box represents a FRITZ!Box found on the network
type Box struct {
	// Instance is the advertised service instance name (e.g., "FRITZ!Box 7590")
	Instance string

	// Model is the product name taken from the instance, if recognizable
	Model string

	// Hostname is the mDNS hostname (e.g., "fritz.box.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the advertised HTTP port (typically 80)
	Port int

	// Metadata contains the mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the box was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the box
func (b *Box) String() string {
	name := b.Model
	if name == "" {
		name = b.Instance
	}
	return fmt.Sprintf("%s (%s) at %s", name, b.Hostname, b.Address())
}

// Address returns host:port of the box's web interface
func (b *Box) Address() string {
	return net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// Host returns the value to use as --host. The port is left out when it
// is the default HTTP port.
func (b *Box) Host() string {
	if b.Port == DefaultPort {
		if ip := net.ParseIP(b.IP); ip != nil && ip.To4() == nil {
			return "[" + b.IP + "]"
		}
		return b.IP
	}
	return b.Address()
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Box) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
