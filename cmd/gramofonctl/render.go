package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"gramofonctl/pkg/models"
)

// Output formats accepted by the -o flag.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatCSV   = "csv"
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

func deviceCSVHeaders() []string {
	return []string{"address", "name", "mac", "vendor", "method", "discovered_at"}
}

func deviceCSVRow(d models.DeviceSummary) []string {
	return []string{
		d.Address,
		d.Name,
		d.MAC,
		d.Vendor,
		string(d.Method),
		d.DiscoveredAt.Format(time.RFC3339),
	}
}

// renderDevices writes the device list in the requested format. Table and
// CSV keep the same column order so the two are interchangeable downstream.
func renderDevices(w io.Writer, format string, devices []models.DeviceSummary) error {
	switch format {
	case formatJSON:
		return renderJSON(w, devices)
	case formatYAML:
		return renderYAML(w, devices)
	case formatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(deviceCSVHeaders()); err != nil {
			return err
		}
		for _, d := range devices {
			if err := cw.Write(deviceCSVRow(d)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case formatTable, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ADDRESS\tNAME\tMAC\tVENDOR\tMETHOD")
		for _, d := range devices {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				d.Address, d.Name, d.MAC, d.Vendor, d.Method)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// renderNetworks writes an SSID scan result, strongest network first is the
// caller's job; order is preserved here.
func renderNetworks(w io.Writer, format string, networks []models.WiFiNetwork) error {
	switch format {
	case formatJSON:
		return renderJSON(w, networks)
	case formatYAML:
		return renderYAML(w, networks)
	case formatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"ssid", "strength", "encryption"}); err != nil {
			return err
		}
		for _, n := range networks {
			row := []string{n.SSID, fmt.Sprintf("%d", n.Strength()), n.Encryption}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case formatTable, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SSID\tSTRENGTH\tENCRYPTION")
		for _, n := range networks {
			fmt.Fprintf(tw, "%s\t%d%%\t%s\n", n.SSID, n.Strength(), n.Encryption)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// renderRaw pretty-prints a raw JSON payload from the device. YAML output
// round-trips it through a generic map first.
func renderRaw(w io.Writer, format string, raw json.RawMessage) error {
	switch format {
	case formatYAML:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		return renderYAML(w, v)
	case formatJSON, formatTable, "":
		var buf map[string]any
		if err := json.Unmarshal(raw, &buf); err != nil {
			// Not an object; print as-is.
			_, werr := fmt.Fprintln(w, string(raw))
			return werr
		}
		return renderJSON(w, buf)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
