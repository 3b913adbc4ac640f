package app

import (
	"context"
	"log/slog"

	"github.com/zx06/zcrm/internal/client"
	"github.com/zx06/zcrm/internal/codec"
	"github.com/zx06/zcrm/internal/config"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/log"
	"github.com/zx06/zcrm/internal/secret"
	"github.com/zx06/zcrm/internal/ssh"
	"github.com/zx06/zcrm/internal/transport"
)

// Session 持有一次命令执行所需的 CRM client 及其底层连接。
type Session struct {
	Client    *client.Client
	SSHClient *ssh.Client
	Profile   config.Profile
}

func (s *Session) Close() error {
	if s == nil || s.SSHClient == nil {
		return nil
	}
	return s.SSHClient.Close()
}

type SessionOptions struct {
	Profile          config.Profile
	AllowPlaintext   bool
	SkipHostKeyCheck bool
	Logger           *slog.Logger      // 可选
	Keyring          secret.KeyringAPI // 可选，测试注入
	Sink             codec.Sink        // 可选，下载落盘实现
}

// ResolveSession 解析 auth token，按需建立 SSH 跳板，
// 再依次构建 transport → codec → client。
func ResolveSession(ctx context.Context, opts SessionOptions) (*Session, *errors.XError) {
	allowPlaintext := opts.AllowPlaintext || opts.Profile.AllowPlaintext
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	if opts.Profile.AuthToken == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "auth_token is required", nil)
	}
	token, xe := secret.Resolve(opts.Profile.AuthToken, secret.Options{AllowPlaintext: allowPlaintext, Keyring: opts.Keyring})
	if xe != nil {
		return nil, xe
	}

	sshClient, xe := resolveSSH(ctx, opts.Profile, allowPlaintext, opts.SkipHostKeyCheck, opts.Keyring)
	if xe != nil {
		return nil, xe
	}

	topts := transport.Options{
		Endpoint:  opts.Profile.Endpoint,
		AuthToken: token,
		Scope:     opts.Profile.Scope,
		Timeout:   opts.Profile.Timeout,
		Logger:    logger,
	}
	if sshClient != nil {
		topts.Dialer = sshClient
	}
	t, xe := transport.New(topts)
	if xe != nil {
		if sshClient != nil {
			_ = sshClient.Close()
		}
		return nil, xe
	}

	copts := []codec.Option{codec.WithLogger(logger)}
	if opts.Sink != nil {
		copts = append(copts, codec.WithSink(opts.Sink))
	}
	c := client.New(codec.New(t, copts...),
		client.WithWrites(opts.Profile.UnsafeAllowWrite),
		client.WithLogger(logger),
	)
	return &Session{Client: c, SSHClient: sshClient, Profile: opts.Profile}, nil
}

// ResolveSSH 在 profile 配置了 ssh_proxy 时建立 SSH 连接，否则返回 nil。
func ResolveSSH(ctx context.Context, profile config.Profile, allowPlaintext, skipHostKeyCheck bool) (*ssh.Client, *errors.XError) {
	return resolveSSH(ctx, profile, allowPlaintext, skipHostKeyCheck, nil)
}

func resolveSSH(ctx context.Context, profile config.Profile, allowPlaintext, skipHostKeyCheck bool, kr secret.KeyringAPI) (*ssh.Client, *errors.XError) {
	if profile.SSHConfig == nil {
		return nil, nil
	}

	passphrase := profile.SSHConfig.Passphrase
	if passphrase != "" {
		pp, xe := secret.Resolve(passphrase, secret.Options{AllowPlaintext: allowPlaintext, Keyring: kr})
		if xe != nil {
			return nil, xe
		}
		passphrase = pp
	}

	return ssh.Connect(ctx, ssh.Options{
		Host:                profile.SSHConfig.Host,
		Port:                profile.SSHConfig.Port,
		User:                profile.SSHConfig.User,
		IdentityFile:        profile.SSHConfig.IdentityFile,
		Passphrase:          passphrase,
		KnownHostsFile:      profile.SSHConfig.KnownHostsFile,
		SkipKnownHostsCheck: skipHostKeyCheck || profile.SSHConfig.SkipHostKey,
	})
}
