package device

import (
	"context"
	"encoding/json"
	"time"

	"gramofonctl/internal/rpc"
	"gramofonctl/pkg/models"
)

// ssidScanSettle is how long the radio needs between starting an SSID scan
// and the results being readable. Matches the device firmware's behavior.
const ssidScanSettle = 2 * time.Second

// Status returns the raw anet status object. The shape varies across
// firmware versions, so it is passed through for rendering rather than
// decoded into a struct.
func (c *Client) Status(ctx context.Context) (json.RawMessage, error) {
	res, err := c.call(ctx, "anet", "status", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Raw), nil
}

// DeviceName returns the friendly name. The firmware stores it under
// spotifyname regardless of which alias was used to set it.
func (c *Client) DeviceName(ctx context.Context) (string, error) {
	res, err := c.call(ctx, "anet", "get_gramofonname", nil)
	if err != nil {
		return "", err
	}
	return res.Get("spotifyname").String(), nil
}

// SetDeviceName sets the friendly name. Both the mDNS and Spotify Connect
// aliases are written so the name shows up consistently everywhere.
func (c *Client) SetDeviceName(ctx context.Context, name string) error {
	args, err := rpc.Args{}.
		Set("mdnsname", name).
		Set("spotifyname", name).
		Bytes()
	if err != nil {
		return err
	}
	_, err = c.call(ctx, "anet", "set_gramofonname", args)
	return err
}

// MACAddress returns the device's hardware address.
func (c *Client) MACAddress(ctx context.Context) (string, error) {
	res, err := c.call(ctx, "mfgd", "get_fonmac", nil)
	if err != nil {
		return "", err
	}
	return res.Get("fonmac").String(), nil
}

// ScanNetworks starts an SSID scan on the radio, waits for it to settle, and
// returns the visible networks. Quality fields arrive as strings on some
// firmware versions; gjson's Int() tolerates both.
func (c *Client) ScanNetworks(ctx context.Context) ([]models.WiFiNetwork, error) {
	startArgs, err := rpc.Args{}.Set("iface", "radio").Bytes()
	if err != nil {
		return nil, err
	}
	if _, err := c.call(ctx, "anet", "ssid_scan", startArgs); err != nil {
		return nil, err
	}

	select {
	case <-time.After(c.scanSettle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	res, err := c.call(ctx, "anet", "get_ssids", nil)
	if err != nil {
		return nil, err
	}

	var networks []models.WiFiNetwork
	for _, entry := range res.Get("results").Array() {
		networks = append(networks, models.WiFiNetwork{
			SSID:       entry.Get("ssid").String(),
			Quality:    entry.Get("quality").Int(),
			QualityMax: entry.Get("quality_max").Int(),
			Encryption: entry.Get("encryption").String(),
		})
	}
	return networks, nil
}

// WiFiConfig returns the private interface configuration as raw JSON.
func (c *Client) WiFiConfig(ctx context.Context) (json.RawMessage, error) {
	args, err := rpc.Args{}.Set("name", "private").Bytes()
	if err != nil {
		return nil, err
	}
	res, err := c.call(ctx, "wifid", "get_wiface", args)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Raw), nil
}

// SetupParams are the inputs to the firmware's one-shot setup method.
type SetupParams struct {
	SSID       string
	Password   string
	Encryption string // defaults to psk2
	DeviceName string // optional friendly name
	DisableAP  bool
}

// EasySetup joins the device to a WiFi network using the wcliclone netmode,
// the same path the vendor app used. ReloadWiFi must follow for the change
// to take effect.
func (c *Client) EasySetup(ctx context.Context, p SetupParams) error {
	enc := p.Encryption
	if enc == "" {
		enc = "psk2"
	}
	args := rpc.Args{}.
		Set("netmode", "wcliclone").
		Set("ssid", p.SSID).
		Set("key", p.Password).
		Set("encryption", enc).
		Set("ap_disabled", p.DisableAP)
	if p.DeviceName != "" {
		args = args.Set("gramofon_name", p.DeviceName)
	}
	raw, err := args.Bytes()
	if err != nil {
		return err
	}
	_, err = c.call(ctx, "anet", "doeasysetup", raw)
	return err
}

// ReloadWiFi applies a pending WiFi configuration change.
func (c *Client) ReloadWiFi(ctx context.Context) error {
	_, err := c.call(ctx, "wifid", "reload", nil)
	return err
}

// LEDStatus returns the LED state object (status and color).
func (c *Client) LEDStatus(ctx context.Context) (json.RawMessage, error) {
	res, err := c.call(ctx, "ledd", "get", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Raw), nil
}

// SetLED switches the front LED on or off.
func (c *Client) SetLED(ctx context.Context, enabled bool) error {
	status := "disable"
	if enabled {
		status = "enable"
	}
	args, err := rpc.Args{}.Set("status", status).Bytes()
	if err != nil {
		return err
	}
	_, err = c.call(ctx, "ledd", "switch", args)
	return err
}

// Reboot restarts the device. The call returns before the reboot happens.
func (c *Client) Reboot(ctx context.Context) error {
	_, err := c.call(ctx, "mfgd", "reboot", nil)
	return err
}

// FactoryReset wipes the device back to factory defaults. Confirmation is
// the CLI's job; this method does not ask twice.
func (c *Client) FactoryReset(ctx context.Context) error {
	_, err := c.call(ctx, "mfgd", "reset_defaults", nil)
	return err
}

// CheckUpgrades returns the firmware images the device offers to install.
func (c *Client) CheckUpgrades(ctx context.Context) ([]models.FirmwareImage, error) {
	res, err := c.call(ctx, "mfgd", "check_upgrades", nil)
	if err != nil {
		return nil, err
	}

	var images []models.FirmwareImage
	for _, entry := range res.Get("images").Array() {
		images = append(images, models.FirmwareImage{
			ID:      entry.Get("firmware_id").String(),
			Message: entry.Get("user_message").String(),
		})
	}
	return images, nil
}

// Upgrade starts installation of the given firmware image. The device
// reboots itself when the upgrade completes.
func (c *Client) Upgrade(ctx context.Context, firmwareID string) error {
	args, err := rpc.Args{}.Set("firmware_id", firmwareID).Bytes()
	if err != nil {
		return err
	}
	_, err = c.call(ctx, "mfgd", "upgrade", args)
	return err
}
