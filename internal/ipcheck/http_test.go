package ipcheck

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHTTPObserver_Defaults(t *testing.T) {
	o := NewHTTPObserver()

	if o.URL() != DefaultEchoURL {
		t.Errorf("expected url %s, got %s", DefaultEchoURL, o.URL())
	}
	if o.httpClient == nil {
		t.Error("expected httpClient to be initialized")
	}
}

func TestHTTPObserver_Observe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{
			name:   "newline terminated",
			status: http.StatusOK,
			body:   "203.0.113.7\n",
			want:   "203.0.113.7",
		},
		{
			name:   "crlf terminated",
			status: http.StatusOK,
			body:   "203.0.113.7\r\n",
			want:   "203.0.113.7",
		},
		{
			name:   "no terminator",
			status: http.StatusOK,
			body:   "203.0.113.7",
			want:   "203.0.113.7",
		},
		{
			name:    "ipv6",
			status:  http.StatusOK,
			body:    "2001:db8::1\n",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "garbage",
			status:  http.StatusOK,
			body:    "<html>captive portal</html>\n",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "surrounding whitespace is not trimmed",
			status:  http.StatusOK,
			body:    " 203.0.113.7\n",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "empty body",
			status:  http.StatusOK,
			body:    "",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "server error",
			status:  http.StatusServiceUnavailable,
			body:    "203.0.113.7\n",
			wantErr: ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if got := r.Header.Get("Cache-Control"); got != "no-cache" {
					t.Errorf("expected Cache-Control no-cache, got %q", got)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			o := NewHTTPObserver(WithEchoURL(server.URL))
			got, err := o.Observe(context.Background())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestHTTPObserver_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPObserver(WithEchoURL(url)).Observe(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestHTTPObserver_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "203.0.113.7\n")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPObserver(WithEchoURL(server.URL)).Observe(ctx)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
		check   func(t *testing.T, o Observer)
	}{
		{
			name: "default is http",
			opts: Options{},
			check: func(t *testing.T, o Observer) {
				h, ok := o.(*HTTPObserver)
				if !ok {
					t.Fatalf("expected *HTTPObserver, got %T", o)
				}
				if h.URL() != DefaultEchoURL {
					t.Errorf("expected default url, got %s", h.URL())
				}
			},
		},
		{
			name: "http with url",
			opts: Options{Source: SourceHTTP, EchoURL: "https://ip.example.com"},
			check: func(t *testing.T, o Observer) {
				if h := o.(*HTTPObserver); h.URL() != "https://ip.example.com" {
					t.Errorf("expected custom url, got %s", h.URL())
				}
			},
		},
		{
			name: "dns",
			opts: Options{Source: SourceDNS, DNSServer: "127.0.0.1:5353"},
			check: func(t *testing.T, o Observer) {
				d, ok := o.(*DNSObserver)
				if !ok {
					t.Fatalf("expected *DNSObserver, got %T", o)
				}
				if d.server != "127.0.0.1:5353" {
					t.Errorf("expected custom server, got %s", d.server)
				}
				if d.name != DefaultQueryName {
					t.Errorf("expected default name, got %s", d.name)
				}
			},
		},
		{
			name:    "unknown",
			opts:    Options{Source: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := New(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, o)
		})
	}
}
