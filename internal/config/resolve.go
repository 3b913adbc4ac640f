package config

import (
	"github.com/zx06/zcrm/internal/errors"
)

// Resolve 合并 config/profile/format：CLI > ENV > Config，并填充 profile 默认值。
func Resolve(opts Options) (Resolved, *errors.XError) {
	cfg, cfgPath, xe := LoadConfig(opts)
	if xe != nil {
		return Resolved{}, xe
	}

	// 选择 profile：--profile > ZCRM_PROFILE > profiles.default > 空
	profile := ""
	explicit := false
	switch {
	case opts.CLIProfileSet:
		profile, explicit = opts.CLIProfile, true
	case opts.EnvProfile != "":
		profile, explicit = opts.EnvProfile, true
	default:
		if _, ok := cfg.Profiles["default"]; ok {
			profile = "default"
		}
	}

	var selected Profile
	if profile != "" {
		p, ok := cfg.Profiles[profile]
		if !ok && explicit && cfgPath != "" {
			return Resolved{}, errors.New(errors.CodeCfgInvalid, "profile not found",
				map[string]any{"profile": profile, "path": cfgPath})
		}
		selected = p
	}

	resolved, xe := resolveProfile(cfg, selected)
	if xe != nil {
		return Resolved{}, xe
	}

	// 合并 format：--format > ZCRM_FORMAT > profile.format > auto
	format := "auto"
	if resolved.Format != "" {
		format = resolved.Format
	}
	if opts.EnvFormat != "" {
		format = opts.EnvFormat
	}
	if opts.CLIFormatSet {
		format = opts.CLIFormat
	}

	return Resolved{ConfigPath: cfgPath, ProfileName: profile, Format: format, Profile: resolved}, nil
}

// resolveProfile 填充默认值并展开 ssh_proxy 引用。
func resolveProfile(cfg File, p Profile) (Profile, *errors.XError) {
	if p.Endpoint == "" {
		p.Endpoint = DefaultEndpoint
	}
	if p.Scope == "" {
		p.Scope = DefaultScope
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultTimeout
	}
	if p.SSHProxy != "" {
		proxy, ok := cfg.SSHProxies[p.SSHProxy]
		if !ok {
			return Profile{}, errors.New(errors.CodeCfgInvalid, "ssh_proxy not found",
				map[string]any{"ssh_proxy": p.SSHProxy})
		}
		if proxy.Port == 0 {
			proxy.Port = 22
		}
		p.SSHConfig = &proxy
	}
	return p, nil
}

// ResolveNamed 按名称取出 profile 并填充默认值（供 profile show / MCP 使用）。
func ResolveNamed(cfg File, name string) (Profile, *errors.XError) {
	p, ok := cfg.Profiles[name]
	if !ok {
		return Profile{}, errors.New(errors.CodeCfgInvalid, "profile not found", map[string]any{"profile": name})
	}
	return resolveProfile(cfg, p)
}
