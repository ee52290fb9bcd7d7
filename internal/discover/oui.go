package discover

import (
	"bufio"
	"bytes"
	_ "embed"
	"strings"
	"sync"
)

//go:embed oui_data.txt
var ouiRawData []byte

// OUITable maps MAC address prefixes to vendor names. The embedded table is
// deliberately small: the prefixes Fon shipped Gramofons under, plus the
// common home-network vendors that show up next to them during a sweep.
type OUITable struct {
	once  sync.Once
	table map[string]string
}

// NewOUITable creates a lazily loaded OUI table.
func NewOUITable() *OUITable {
	return &OUITable{}
}

// Lookup returns the vendor for a MAC address in any common format
// (AA:BB:CC:DD:EE:FF, AA-BB-CC-DD-EE-FF, AABBCCDDEEFF), or "" when the
// prefix is not in the table.
func (o *OUITable) Lookup(mac string) string {
	o.once.Do(o.load)

	prefix := normalizeMAC(mac)
	if prefix == "" {
		return ""
	}
	return o.table[prefix]
}

func (o *OUITable) load() {
	o.table = make(map[string]string, 64)
	scanner := bufio.NewScanner(bytes.NewReader(ouiRawData))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), "\t", 2)
		if len(parts) != 2 {
			continue
		}
		prefix := strings.ToUpper(strings.TrimSpace(parts[0]))
		vendor := strings.TrimSpace(parts[1])
		if prefix != "" && vendor != "" {
			o.table[prefix] = vendor
		}
	}
}

// normalizeMAC returns the first three octets as uppercase colon-separated
// hex, or "" when the input is too short to contain them.
func normalizeMAC(mac string) string {
	mac = strings.ToUpper(mac)
	mac = strings.ReplaceAll(mac, ":", "")
	mac = strings.ReplaceAll(mac, "-", "")
	mac = strings.ReplaceAll(mac, ".", "")

	if len(mac) < 6 {
		return ""
	}
	return mac[0:2] + ":" + mac[2:4] + ":" + mac[4:6]
}
