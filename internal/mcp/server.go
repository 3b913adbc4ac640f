package mcp

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/zcrm/internal/config"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/secret"
)

const (
	TransportStdio          = config.MCPTransportStdio
	TransportStreamableHTTP = config.MCPTransportStreamableHTTP

	DefaultHTTPAddr = "127.0.0.1:8787"

	EnvTransport     = "ZCRM_MCP_TRANSPORT"
	EnvHTTPAddr      = "ZCRM_MCP_HTTP_ADDR"
	EnvHTTPAuthToken = "ZCRM_MCP_HTTP_AUTH_TOKEN"
)

const (
	authHeader    = "Authorization"
	bearerPrefix  = "Bearer "
	unauthorized  = "unauthorized"
	headerMissing = "authorization header is required"

	shutdownTimeout = 5 * time.Second
)

// ServerOptions carries CLI flag values; empty means "not set".
type ServerOptions struct {
	Transport     string
	HTTPAddr      string
	HTTPAuthToken string

	Getenv  func(string) string // nil means no environment
	Keyring secret.KeyringAPI   // optional
}

// ServerConfig is the resolved server setup (CLI > ENV > Config).
type ServerConfig struct {
	Transport     string
	HTTPAddr      string
	HTTPAuthToken string
}

// ResolveServerConfig merges flags, environment and the mcp section of zcrm.yaml.
func ResolveServerConfig(opts ServerOptions, cfg config.MCPConfig) (ServerConfig, *errors.XError) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	transport := firstNonEmpty(opts.Transport, getenv(EnvTransport), cfg.Transport, TransportStdio)
	if transport != TransportStdio && transport != TransportStreamableHTTP {
		return ServerConfig{}, errors.New(errors.CodeCfgInvalid, "invalid mcp transport", map[string]any{"transport": transport})
	}
	addr := firstNonEmpty(opts.HTTPAddr, getenv(EnvHTTPAddr), cfg.HTTP.Addr, DefaultHTTPAddr)

	token := firstNonEmpty(opts.HTTPAuthToken, getenv(EnvHTTPAuthToken))
	if token == "" && cfg.HTTP.AuthToken != "" {
		v, xe := secret.Resolve(cfg.HTTP.AuthToken, secret.Options{
			AllowPlaintext: cfg.HTTP.AllowPlaintextToken,
			Keyring:        opts.Keyring,
		})
		if xe != nil {
			return ServerConfig{}, xe
		}
		token = v
	}
	if transport == TransportStreamableHTTP && token == "" {
		return ServerConfig{}, errors.New(errors.CodeCfgInvalid, "streamable http transport requires auth token", nil)
	}
	return ServerConfig{Transport: transport, HTTPAddr: addr, HTTPAuthToken: token}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NewStreamableHTTPHandler creates a streamable HTTP handler guarded by a bearer token.
func NewStreamableHTTPHandler(server *mcp.Server, authToken string) (http.Handler, error) {
	if server == nil {
		return nil, errors.New(errors.CodeInternal, "mcp server is nil", nil)
	}
	if authToken == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "mcp streamable http auth token is required", nil)
	}
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
	return requireAuth(handler, authToken), nil
}

func requireAuth(next http.Handler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		auth := strings.TrimSpace(req.Header.Get(authHeader))
		if auth == "" {
			http.Error(w, headerMissing, http.StatusUnauthorized)
			return
		}
		received, ok := strings.CutPrefix(auth, bearerPrefix)
		if !ok || subtle.ConstantTimeCompare([]byte(received), []byte(token)) != 1 {
			http.Error(w, unauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// Serve runs the server on the configured transport until ctx is done.
func Serve(ctx context.Context, server *mcp.Server, sc ServerConfig) error {
	switch sc.Transport {
	case TransportStdio:
		return server.Run(ctx, &mcp.StdioTransport{})
	case TransportStreamableHTTP:
		ln, err := net.Listen("tcp", sc.HTTPAddr)
		if err != nil {
			return errors.Wrap(errors.CodeCfgInvalid, "failed to listen", map[string]any{"addr": sc.HTTPAddr}, err)
		}
		return serveHTTP(ctx, server, ln, sc.HTTPAuthToken)
	default:
		return errors.New(errors.CodeCfgInvalid, "unsupported mcp transport", map[string]any{"transport": sc.Transport})
	}
}

func serveHTTP(ctx context.Context, server *mcp.Server, ln net.Listener, token string) error {
	handler, err := NewStreamableHTTPHandler(server, token)
	if err != nil {
		_ = ln.Close()
		return err
	}
	httpServer := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
