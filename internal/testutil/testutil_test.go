package testutil

import (
	"context"
	"testing"

	"gramofonctl/internal/event"
	"gramofonctl/pkg/models"
)

func TestLogger_NotNil(t *testing.T) {
	if Logger() == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestRecorder_CapturesAndFilters(t *testing.T) {
	bus := event.NewBus(nil)
	rec := NewRecorder(bus)
	defer rec.Close()

	bus.Publish(context.Background(), event.Event{Topic: "a", Payload: 1})
	bus.Publish(context.Background(), event.Event{Topic: "b", Payload: 2})
	bus.Publish(context.Background(), event.Event{Topic: "a", Payload: 3})

	if got := len(rec.Events()); got != 3 {
		t.Fatalf("Events len = %d, want 3", got)
	}
	onlyA := rec.Topic("a")
	if len(onlyA) != 2 || onlyA[1].Payload != 3 {
		t.Errorf("Topic(a) = %+v, want two events ending in payload 3", onlyA)
	}
}

func TestRecorder_Close(t *testing.T) {
	bus := event.NewBus(nil)
	rec := NewRecorder(bus)
	rec.Close()

	bus.Publish(context.Background(), event.Event{Topic: "late"})
	if got := len(rec.Events()); got != 0 {
		t.Errorf("Events len = %d after Close, want 0", got)
	}
}

func TestNewDeviceSummary_Options(t *testing.T) {
	d := NewDeviceSummary(
		WithAddress("10.0.0.5"),
		WithName("Kitchen"),
		WithMethod(models.DiscoveryMDNS),
	)
	if d.Address != "10.0.0.5" || d.Name != "Kitchen" || d.Method != models.DiscoveryMDNS {
		t.Errorf("fixture = %+v", d)
	}
	if d.MAC == "" || d.DiscoveredAt.IsZero() {
		t.Error("defaults not applied")
	}
}
