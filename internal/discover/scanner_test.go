package discover

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramofonctl/internal/event"
	"gramofonctl/internal/rpc"
	"gramofonctl/internal/testutil"
	"gramofonctl/pkg/models"
)

// trackingFactory builds fake devices, counts concurrent logins, and
// succeeds only for the scripted addresses.
type trackingFactory struct {
	hits map[string]*fakeDevice

	active  int32
	peak    int32
	created int32
}

func (tf *trackingFactory) build(addr string) deviceClient {
	atomic.AddInt32(&tf.created, 1)
	if dev, ok := tf.hits[addr]; ok {
		return dev
	}
	return &countingDevice{tf: tf, loginErr: &rpc.NetworkError{Addr: addr, Err: errors.New("no route to host")}}
}

// countingDevice records login concurrency in the factory before answering.
type countingDevice struct {
	tf       *trackingFactory
	loginErr error
	session  string
}

func (d *countingDevice) Login(context.Context) error {
	n := atomic.AddInt32(&d.tf.active, 1)
	for {
		p := atomic.LoadInt32(&d.tf.peak)
		if n <= p || atomic.CompareAndSwapInt32(&d.tf.peak, p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	atomic.AddInt32(&d.tf.active, -1)
	return d.loginErr
}

func (d *countingDevice) Session() string { return d.session }
func (d *countingDevice) DeviceName(context.Context) (string, error) {
	return "Gramofon", nil
}
func (d *countingDevice) MACAddress(context.Context) (string, error) {
	return "00:18:84:00:00:01", nil
}

func TestScanFindsScriptedDevices(t *testing.T) {
	tf := &trackingFactory{
		hits: map[string]*fakeDevice{
			"172.16.4.3":  {session: "s1", name: "Kitchen", mac: "00:18:84:00:00:03"},
			"172.16.4.11": {session: "s2", name: "Hall", mac: "00:18:84:00:00:0b"},
		},
	}
	prober := NewProber("admin", "admin", WithClientFactory(tf.build))

	bus := event.NewBus(nil)
	rec := testutil.NewRecorder(bus)
	defer rec.Close()

	scanner := NewScanner(prober, WithBus(bus), WithConcurrency(8))
	report, err := scanner.Scan(context.Background(), "172.16.4.0/28")
	require.NoError(t, err)

	assert.Equal(t, 14, report.Probed)
	require.Len(t, report.Devices, 2)
	names := []string{report.Devices[0].Name, report.Devices[1].Name}
	assert.ElementsMatch(t, []string{"Kitchen", "Hall"}, names)
	assert.NotEmpty(t, report.ScanID)

	assert.Len(t, rec.Topic(TopicScanStarted), 1)
	assert.Len(t, rec.Topic(TopicScanCompleted), 1)
	discovered := rec.Topic(TopicDeviceDiscovered)
	require.Len(t, discovered, 2)
	// Bus order matches report order: both are completion order.
	assert.Equal(t, report.Devices[0].Address, discovered[0].Payload.(models.DeviceSummary).Address)
	assert.Equal(t, report.Devices[1].Address, discovered[1].Payload.(models.DeviceSummary).Address)
}

func TestScanRespectsConcurrencyBound(t *testing.T) {
	tf := &trackingFactory{}
	prober := NewProber("admin", "admin", WithClientFactory(tf.build))

	scanner := NewScanner(prober, WithConcurrency(5))
	report, err := scanner.Scan(context.Background(), "10.1.0.0/26")
	require.NoError(t, err)

	assert.Equal(t, 62, report.Probed)
	assert.Equal(t, int32(62), atomic.LoadInt32(&tf.created))
	assert.LessOrEqual(t, atomic.LoadInt32(&tf.peak), int32(5))
	assert.Empty(t, report.Devices)
}

func TestScanInvalidNetworkProbesNothing(t *testing.T) {
	tf := &trackingFactory{}
	prober := NewProber("admin", "admin", WithClientFactory(tf.build))
	scanner := NewScanner(prober)

	_, err := scanner.Scan(context.Background(), "not-a-network")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Zero(t, atomic.LoadInt32(&tf.created), "no probes should run on a config error")
}

func TestScanCancellation(t *testing.T) {
	tf := &trackingFactory{}
	prober := NewProber("admin", "admin", WithClientFactory(tf.build))
	scanner := NewScanner(prober, WithConcurrency(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := scanner.Scan(ctx, "10.2.0.0/24")
	require.ErrorIs(t, err, context.Canceled)
	// A cancelled sweep still returns whatever completed before the cut.
	require.NotNil(t, report)
	assert.Less(t, atomic.LoadInt32(&tf.created), int32(254))
}
