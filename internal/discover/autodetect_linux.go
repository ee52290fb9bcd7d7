//go:build linux

package discover

import "github.com/mdlayher/wifi"

// wirelessInterfaceNames asks nl80211 which interfaces are WiFi. Failure is
// fine; detection just loses the wireless preference.
func wirelessInterfaceNames() map[string]bool {
	client, err := wifi.New()
	if err != nil {
		return nil
	}
	defer client.Close()

	ifaces, err := client.Interfaces()
	if err != nil {
		return nil
	}

	names := make(map[string]bool, len(ifaces))
	for _, iface := range ifaces {
		if iface.Name != "" {
			names[iface.Name] = true
		}
	}
	return names
}
