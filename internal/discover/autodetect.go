package discover

import (
	"errors"
	"fmt"
	"net"
)

// DetectNetwork guesses the subnet to sweep from the local interfaces. A
// wireless interface wins when the platform can identify one, since the
// Gramofon lives on WiFi; otherwise the first up, non-loopback IPv4
// interface is used.
func DetectNetwork() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}

	wireless := wirelessInterfaceNames()

	var fallback string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			ones, _ := ipnet.Mask.Size()
			cidr := fmt.Sprintf("%s/%d", ipnet.IP.Mask(ipnet.Mask), ones)
			if wireless[iface.Name] {
				return cidr, nil
			}
			if fallback == "" {
				fallback = cidr
			}
		}
	}

	if fallback == "" {
		return "", errors.New("no usable IPv4 interface found")
	}
	return fallback, nil
}
