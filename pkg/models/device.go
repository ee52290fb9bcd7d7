// Package models defines the shared data types exchanged between the
// discovery core and the command-line layer.
package models

import "time"

// UnknownField is the sentinel used when a device answered login but a
// follow-up info call failed or returned an empty value. Fields are never
// left empty so output columns stay aligned.
const UnknownField = "Unknown"

// DiscoveryMethod indicates how a device was found.
type DiscoveryMethod string

const (
	// DiscoveryAPI means the device answered a JSON-RPC login. This is the
	// only method that counts as a confirmed Gramofon.
	DiscoveryAPI DiscoveryMethod = "api"
	// DiscoveryMDNS means the device was heard advertising over mDNS.
	DiscoveryMDNS DiscoveryMethod = "mdns"
	// DiscoverySSDP means the device answered a UPnP root-device search.
	DiscoverySSDP DiscoveryMethod = "ssdp"
)

// DeviceSummary describes one discovered Gramofon. It lives only for the
// duration of a single run; nothing is persisted.
type DeviceSummary struct {
	Address      string          `json:"address" yaml:"address"`
	Name         string          `json:"name" yaml:"name"`
	MAC          string          `json:"mac" yaml:"mac"`
	Vendor       string          `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Method       DiscoveryMethod `json:"method" yaml:"method"`
	DiscoveredAt time.Time       `json:"discovered_at" yaml:"discovered_at"`

	// Session is the token obtained during the probe's login. It is only
	// valid for that probe's connection lifetime and is never written to
	// rendered output.
	Session string `json:"-" yaml:"-"`
}

// WiFiNetwork is one entry from the device's SSID scan.
type WiFiNetwork struct {
	SSID       string `json:"ssid" yaml:"ssid"`
	Quality    int64  `json:"quality" yaml:"quality"`
	QualityMax int64  `json:"quality_max" yaml:"quality_max"`
	Encryption string `json:"encryption" yaml:"encryption"`
}

// Strength returns signal strength as a 0-100 percentage.
func (n WiFiNetwork) Strength() int {
	if n.QualityMax <= 0 {
		return 0
	}
	pct := int(n.Quality * 100 / n.QualityMax)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// FirmwareImage is one available upgrade reported by the device.
type FirmwareImage struct {
	ID      string `json:"firmware_id" yaml:"firmware_id"`
	Message string `json:"user_message" yaml:"user_message"`
}
