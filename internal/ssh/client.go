package ssh

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/zx06/zcrm/internal/errors"
)

// Client 包装 ssh.Client，提供 DialContext 供 HTTP transport 使用。
type Client struct {
	client *ssh.Client
}

// Connect 建立 SSH 连接；ctx 的 deadline 同时约束 TCP 建连与握手。
func Connect(ctx context.Context, opts Options) (*Client, *errors.XError) {
	if opts.Host == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "ssh host is required", nil)
	}
	opts = opts.withDefaults()

	authMethods, xe := buildAuthMethods(opts)
	if xe != nil {
		return nil, xe
	}
	hostKeyCallback, xe := buildHostKeyCallback(opts)
	if xe != nil {
		return nil, xe
	}
	config := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
	}

	addr := opts.Addr()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrap(errors.CodeSSHDialFailed, "failed to connect to ssh server", map[string]any{"host": opts.Host}, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, classifyHandshakeError(opts.Host, err)
	}
	_ = conn.SetDeadline(time.Time{})
	return &Client{client: ssh.NewClient(c, chans, reqs)}, nil
}

func classifyHandshakeError(host string, err error) *errors.XError {
	details := map[string]any{"host": host}
	var keyErr *knownhosts.KeyError
	if stderrors.As(err, &keyErr) || strings.Contains(err.Error(), "knownhosts:") {
		return errors.Wrap(errors.CodeSSHHostKeyMismatch, "ssh host key is not trusted by known_hosts", details, err)
	}
	if strings.Contains(err.Error(), "unable to authenticate") {
		return errors.Wrap(errors.CodeSSHAuthFailed, "ssh authentication failed", details, err)
	}
	return errors.Wrap(errors.CodeSSHDialFailed, "ssh handshake failed", details, err)
}

// DialContext 通过 SSH 通道建立到 addr 的连接。
func (c *Client) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return c.client.DialContext(ctx, network, addr)
}

// Close 关闭 SSH 连接。
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func buildAuthMethods(opts Options) ([]ssh.AuthMethod, *errors.XError) {
	var methods []ssh.AuthMethod

	// 私钥认证
	if opts.IdentityFile != "" {
		keyPath := expandPath(opts.IdentityFile)
		keyData, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, errors.Wrap(errors.CodeCfgInvalid, "failed to read ssh identity file", map[string]any{"path": keyPath}, err)
		}
		var signer ssh.Signer
		if opts.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(opts.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyData)
		}
		if err != nil {
			return nil, errors.Wrap(errors.CodeSSHAuthFailed, "failed to parse ssh private key", map[string]any{"path": keyPath}, err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	// 尝试默认私钥路径
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyData, err := os.ReadFile(expandPath("~/.ssh/" + name))
		if err != nil {
			continue
		}
		if signer, err := ssh.ParsePrivateKey(keyData); err == nil {
			methods = append(methods, ssh.PublicKeys(signer))
			break
		}
	}
	if len(methods) == 0 {
		return nil, errors.New(errors.CodeSSHAuthFailed, "no ssh authentication method available", nil)
	}
	return methods, nil
}

func buildHostKeyCallback(opts Options) (ssh.HostKeyCallback, *errors.XError) {
	if opts.SkipKnownHostsCheck {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	khPath := opts.KnownHostsFile
	if khPath == "" {
		khPath = DefaultKnownHostsPath()
	}
	khPath = expandPath(khPath)
	cb, err := knownhosts.New(khPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeSSHHostKeyMismatch, "known_hosts file not found; set skip_host_key to bypass (not recommended)", map[string]any{"path": khPath})
		}
		return nil, errors.Wrap(errors.CodeSSHHostKeyMismatch, "failed to parse known_hosts", map[string]any{"path": khPath}, err)
	}
	return cb, nil
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	return p
}
