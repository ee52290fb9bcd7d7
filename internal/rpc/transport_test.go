package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// newTestTransport returns a Transport pointed at a handler and the host:port
// the handler is listening on.
func newTestTransport(t *testing.T, handler http.HandlerFunc) (*Transport, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	addr := strings.TrimPrefix(srv.URL, "http://")
	return NewTransport(2*time.Second, zap.NewNop()), addr
}

func TestCallSuccessWithPayload(t *testing.T) {
	tr, addr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[0,{"sid":"deadbeef"}]}`))
	})

	payload, err := tr.Call(context.Background(), addr, "", "session", "login", nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got := string(payload); got != `{"sid":"deadbeef"}` {
		t.Errorf("payload = %s, want sid object", got)
	}
}

func TestCallSuccessWithoutPayload(t *testing.T) {
	tr, addr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[0]}`))
	})

	payload, err := tr.Call(context.Background(), addr, "", "mfgd", "reboot", nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got := string(payload); got != "{}" {
		t.Errorf("payload = %s, want empty object", got)
	}
}

func TestCallNonZeroStatus(t *testing.T) {
	tr, addr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[6]}`))
	})

	_, err := tr.Call(context.Background(), addr, "", "anet", "status", nil)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Call() error = %v, want RemoteError", err)
	}
	if remote.Code != 6 {
		t.Errorf("Code = %d, want 6", remote.Code)
	}
	if remote.Message != "" {
		t.Errorf("Message = %q, want empty for status failures", remote.Message)
	}
}

func TestCallErrorField(t *testing.T) {
	tr, addr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":-32002,"message":"Access denied"}}`))
	})

	_, err := tr.Call(context.Background(), addr, "", "session", "login", nil)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Call() error = %v, want RemoteError", err)
	}
	if remote.Code != -32002 || remote.Message != "Access denied" {
		t.Errorf("RemoteError = {%d %q}, want {-32002 \"Access denied\"}", remote.Code, remote.Message)
	}
}

func TestCallMalformedBody(t *testing.T) {
	cases := map[string]string{
		"not json":          "<html>router login</html>",
		"result not array":  `{"result":{"sid":"x"}}`,
		"empty result":      `{"result":[]}`,
		"status not number": `{"result":["ok"]}`,
		"neither field":     `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			tr, addr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			_, err := tr.Call(context.Background(), addr, "", "anet", "status", nil)
			var proto *ProtocolError
			if !errors.As(err, &proto) {
				t.Fatalf("Call() error = %v, want ProtocolError", err)
			}
		})
	}
}

func TestCallConnectionRefused(t *testing.T) {
	// Grab a port that is guaranteed closed by opening and closing a listener.
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	tr := NewTransport(time.Second, zap.NewNop())
	_, err := tr.Call(context.Background(), addr, "", "session", "login", nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Call() error = %v, want NetworkError", err)
	}
}

func TestCallEnvelopeShape(t *testing.T) {
	var gotPath string
	var gotBody struct {
		JSONRPC string            `json:"jsonrpc"`
		ID      int               `json:"id"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params"`
	}
	tr, addr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"result":[0]}`))
	})

	args, err := Args{}.Set("status", "enable").Bytes()
	if err != nil {
		t.Fatalf("Args error = %v", err)
	}
	if _, err := tr.Call(context.Background(), addr, "cafe0123cafe0123cafe0123cafe0123", "ledd", "switch", args); err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if want := "/api/cafe0123cafe0123cafe0123cafe0123"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if gotBody.JSONRPC != "2.0" || gotBody.ID != 1 || gotBody.Method != "call" {
		t.Errorf("envelope = %+v, want jsonrpc 2.0, id 1, method call", gotBody)
	}
	if len(gotBody.Params) != 3 {
		t.Fatalf("params length = %d, want 3", len(gotBody.Params))
	}
	if string(gotBody.Params[0]) != `"ledd"` || string(gotBody.Params[1]) != `"switch"` {
		t.Errorf("params = %s %s, want module and method", gotBody.Params[0], gotBody.Params[1])
	}
	if string(gotBody.Params[2]) != `{"status":"enable"}` {
		t.Errorf("args = %s, want status object", gotBody.Params[2])
	}
}

func TestCallZeroSessionDefault(t *testing.T) {
	var gotPath string
	tr, addr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"result":[0]}`))
	})

	if _, err := tr.Call(context.Background(), addr, "", "session", "login", nil); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if want := "/api/" + ZeroSession; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestArgsEmpty(t *testing.T) {
	got, err := Args{}.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("empty Args = %s, want {}", got)
	}
}

func TestArgsNested(t *testing.T) {
	got, err := Args{}.
		Set("ssid", "HomeNet").
		Set("key", "hunter2").
		Set("ap_disabled", false).
		Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	want := `{"ssid":"HomeNet","key":"hunter2","ap_disabled":false}`
	if string(got) != want {
		t.Errorf("Args = %s, want %s", got, want)
	}
}
