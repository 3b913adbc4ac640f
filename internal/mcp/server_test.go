package mcp

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zx06/zcrm/internal/config"
	"github.com/zx06/zcrm/internal/errors"
)

func TestStreamableHTTPAuthRequired(t *testing.T) {
	server, err := CreateServer("test", &config.File{Profiles: map[string]config.Profile{}}, nil)
	if err != nil {
		t.Fatalf("CreateServer error: %v", err)
	}
	handler, err := NewStreamableHTTPHandler(server, "secret-token")
	if err != nil {
		t.Fatalf("NewStreamableHTTPHandler error: %v", err)
	}

	ts := httptest.NewServer(handler)
	defer ts.Close()

	cases := []struct {
		name             string
		authHeader       string
		wantUnauthorized bool
	}{
		{name: "missing", authHeader: "", wantUnauthorized: true},
		{name: "wrong-scheme", authHeader: "Token secret-token", wantUnauthorized: true},
		{name: "wrong-token", authHeader: "Bearer bad-token", wantUnauthorized: true},
		{name: "prefix-only", authHeader: "Bearer ", wantUnauthorized: true},
		{name: "ok", authHeader: "Bearer secret-token", wantUnauthorized: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader("{}"))
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			req.Header.Set("Accept", "application/json, text/event-stream")
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("http request error: %v", err)
			}
			resp.Body.Close()
			if tc.wantUnauthorized && resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
			}
			if !tc.wantUnauthorized && resp.StatusCode == http.StatusUnauthorized {
				t.Fatalf("expected non-unauthorized status, got %d", resp.StatusCode)
			}
		})
	}
}

func TestNewStreamableHTTPHandler_Validation(t *testing.T) {
	_, err := NewStreamableHTTPHandler(nil, "token")
	if !errors.HasCode(err, errors.CodeInternal) {
		t.Fatalf("expected CodeInternal, got %v", err)
	}

	server, err := CreateServer("test", &config.File{}, nil)
	if err != nil {
		t.Fatalf("CreateServer error: %v", err)
	}
	_, err = NewStreamableHTTPHandler(server, "")
	if !errors.HasCode(err, errors.CodeCfgInvalid) {
		t.Fatalf("expected CodeCfgInvalid, got %v", err)
	}
}

type mockKeyring struct{ data map[string]string }

func (m *mockKeyring) Get(service, account string) (string, error) {
	if v, ok := m.data[service+"/"+account]; ok {
		return v, nil
	}
	return "", errors.New(errors.CodeSecretNotFound, "not found", nil)
}
func (m *mockKeyring) Set(service, account, value string) error { return nil }
func (m *mockKeyring) Delete(service, account string) error     { return nil }

func TestResolveServerConfig(t *testing.T) {
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	cases := []struct {
		name     string
		opts     ServerOptions
		env      map[string]string
		cfg      config.MCPConfig
		want     ServerConfig
		wantCode errors.Code
	}{
		{
			name: "defaults",
			want: ServerConfig{Transport: TransportStdio, HTTPAddr: DefaultHTTPAddr},
		},
		{
			name: "config",
			cfg: config.MCPConfig{Transport: TransportStreamableHTTP, HTTP: config.MCPHTTPConfig{
				Addr: "0.0.0.0:9000", AuthToken: "plain", AllowPlaintextToken: true,
			}},
			want: ServerConfig{Transport: TransportStreamableHTTP, HTTPAddr: "0.0.0.0:9000", HTTPAuthToken: "plain"},
		},
		{
			name: "env over config",
			env:  map[string]string{EnvTransport: TransportStreamableHTTP, EnvHTTPAddr: ":7000", EnvHTTPAuthToken: "envtok"},
			cfg:  config.MCPConfig{Transport: TransportStdio, HTTP: config.MCPHTTPConfig{Addr: ":9000"}},
			want: ServerConfig{Transport: TransportStreamableHTTP, HTTPAddr: ":7000", HTTPAuthToken: "envtok"},
		},
		{
			name: "flags over env",
			opts: ServerOptions{Transport: TransportStdio, HTTPAddr: ":1", HTTPAuthToken: "cli"},
			env:  map[string]string{EnvTransport: TransportStreamableHTTP, EnvHTTPAddr: ":7000"},
			want: ServerConfig{Transport: TransportStdio, HTTPAddr: ":1", HTTPAuthToken: "cli"},
		},
		{
			name: "keyring token",
			opts: ServerOptions{Keyring: &mockKeyring{data: map[string]string{"zcrm/mcp/token": "kt"}}},
			cfg:  config.MCPConfig{Transport: TransportStreamableHTTP, HTTP: config.MCPHTTPConfig{AuthToken: "keyring:mcp/token"}},
			want: ServerConfig{Transport: TransportStreamableHTTP, HTTPAddr: DefaultHTTPAddr, HTTPAuthToken: "kt"},
		},
		{
			name:     "plaintext token not allowed",
			cfg:      config.MCPConfig{Transport: TransportStreamableHTTP, HTTP: config.MCPHTTPConfig{AuthToken: "plain"}},
			wantCode: errors.CodeCfgInvalid,
		},
		{
			name:     "http without token",
			opts:     ServerOptions{Transport: TransportStreamableHTTP},
			wantCode: errors.CodeCfgInvalid,
		},
		{
			name:     "invalid transport",
			opts:     ServerOptions{Transport: "websocket"},
			wantCode: errors.CodeCfgInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env = tc.env
			tc.opts.Getenv = getenv
			got, xe := ResolveServerConfig(tc.opts, tc.cfg)
			if tc.wantCode != "" {
				if xe == nil || xe.Code != tc.wantCode {
					t.Fatalf("expected %s, got %v", tc.wantCode, xe)
				}
				return
			}
			if xe != nil {
				t.Fatalf("unexpected error: %v", xe)
			}
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestServeHTTP_ShutdownOnCancel(t *testing.T) {
	server, err := CreateServer("test", &config.File{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveHTTP(ctx, server, ln, "tok") }()

	resp, err := http.Get("http://" + addr)
	if err != nil {
		t.Fatalf("server not reachable: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_UnsupportedTransport(t *testing.T) {
	server, _ := CreateServer("test", &config.File{}, nil)
	err := Serve(context.Background(), server, ServerConfig{Transport: "nope"})
	if !errors.HasCode(err, errors.CodeCfgInvalid) {
		t.Fatalf("expected CodeCfgInvalid, got %v", err)
	}
}
