// Package discovery finds FRITZ!Box routers on the local network via mDNS.
//
// Boxes advertise their web interface as an "_http._tcp" service whose
// instance name carries the product name ("FRITZ!Box 7590") and whose
// hostname is usually "fritz.box". Entries matching either are reported.
//
// # Usage Example
//
//	boxes, err := discovery.Scan(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range boxes {
//	    fmt.Printf("Found: %s\n", b)
//	}
//
// # Network Requirements
//
//   - Requires multicast support on the network interface
//   - The box must be on the same local network segment
//   - Firewall must allow mDNS (UDP port 5353)
//
// Some firmware versions do not announce themselves at all; "fritz.box"
// still works as a host name on the box's own network.
package discovery
