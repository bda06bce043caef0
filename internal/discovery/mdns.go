package discovery

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/fonbook/internal/logging"
)

const (
	// ServiceType is the mDNS service type boxes advertise their web interface on
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for box discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port of the web interface
	DefaultPort = 80
)

var (
	// modelPattern matches instance names such as "FRITZ!Box 7590 AX"
	modelPattern = regexp.MustCompile(`(?i)(fritz!box(?:\s+[\w-]+)*)`)

	// hostPattern matches the hostnames boxes answer to ("fritz.box.local.")
	hostPattern = regexp.MustCompile(`(?i)^fritz\.box(\.local)?\.?$`)
)

// Scanner handles mDNS box discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanWithContext browses for boxes until the timeout or ctx expires.
// Boxes answering on several addresses are reported once.
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Box, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)

	var mu sync.Mutex
	found := make(map[string]*Box)

	go func() {
		for entry := range entries {
			box := s.parseServiceEntry(entry)
			if box == nil {
				continue
			}
			logging.Debug("Box discovered",
				zap.String("instance", box.Instance),
				zap.String("address", box.Address()),
			)
			mu.Lock()
			if _, seen := found[box.Address()]; !seen {
				found[box.Address()] = box
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()

	boxes := make([]*Box, 0, len(found))
	for _, box := range found {
		boxes = append(boxes, box)
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Address() < boxes[j].Address() })
	return boxes, nil
}

// Scan discovers boxes with the scanner's timeout
func (s *Scanner) Scan() ([]*Box, error) {
	return s.ScanWithContext(context.Background())
}

// parseServiceEntry converts a zeroconf service entry to a Box.
// Returns nil if the entry is not a FRITZ!Box.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Box {
	if entry == nil {
		return nil
	}

	instance := unescapeInstance(entry.Instance)
	model := modelPattern.FindString(instance)
	if model == "" && !hostPattern.MatchString(entry.HostName) {
		return nil
	}

	// prefer IPv4
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Box{
		Instance:     instance,
		Model:        strings.TrimSpace(model),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// unescapeInstance removes DNS-SD escaping ("FRITZ\!Box\ 7590")
func unescapeInstance(instance string) string {
	return strings.NewReplacer(`\ `, " ", `\!`, "!", `\.`, ".", `\\`, `\`).Replace(instance)
}

// Scan is a convenience function to scan for boxes with a custom timeout
func Scan(timeout time.Duration) ([]*Box, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan()
}
