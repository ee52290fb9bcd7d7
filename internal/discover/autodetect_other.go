//go:build !linux

package discover

// wirelessInterfaceNames has no portable implementation off Linux; the
// first usable interface is taken instead.
func wirelessInterfaceNames() map[string]bool {
	return nil
}
