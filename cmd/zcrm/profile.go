package main

import (
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/zx06/zcrm/internal/config"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/output"
	"github.com/zx06/zcrm/internal/secret"
)

// NewProfileCommand creates the profile command group
func NewProfileCommand(w *output.Writer) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect configured profiles",
	}

	profileCmd.AddCommand(newProfileListCommand(w))
	profileCmd.AddCommand(newProfileShowCommand(w))

	return profileCmd
}

type profileInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Endpoint    string `json:"endpoint" yaml:"endpoint"`
	Mode        string `json:"mode" yaml:"mode"` // "read-only" or "read-write"
}

type profileList struct {
	ConfigPath string        `json:"config_path" yaml:"config_path"`
	Profiles   []profileInfo `json:"profiles" yaml:"profiles"`
}

// ToTableData renders one row per profile.
func (l profileList) ToTableData() ([]string, []map[string]any, bool) {
	rows := make([]map[string]any, 0, len(l.Profiles))
	for _, p := range l.Profiles {
		rows = append(rows, map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"endpoint":    p.Endpoint,
			"mode":        p.Mode,
		})
	}
	return []string{"name", "description", "endpoint", "mode"}, rows, true
}

func profileMode(p config.Profile) string {
	if p.UnsafeAllowWrite {
		return "read-write"
	}
	return "read-only"
}

// newProfileListCommand creates the profile list command
func newProfileListCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			cfg, cfgPath, xe := config.LoadConfig(config.Options{ConfigPath: GlobalConfig.ConfigStr})
			if xe != nil {
				return xe
			}

			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			slices.Sort(names)

			result := profileList{ConfigPath: cfgPath, Profiles: make([]profileInfo, 0, len(names))}
			for _, name := range names {
				p, xe := config.ResolveNamed(cfg, name)
				if xe != nil {
					return xe
				}
				result.Profiles = append(result.Profiles, profileInfo{
					Name:        name,
					Description: p.Description,
					Endpoint:    p.Endpoint,
					Mode:        profileMode(p),
				})
			}
			return w.WriteOK(format, result)
		},
	}
}

// newProfileShowCommand creates the profile show command
func newProfileShowCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show profile details (secrets redacted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			cfg, cfgPath, xe := config.LoadConfig(config.Options{ConfigPath: GlobalConfig.ConfigStr})
			if xe != nil {
				return xe
			}
			if _, ok := cfg.Profiles[name]; !ok {
				return errors.New(errors.CodeCfgInvalid, "profile not found", map[string]any{"name": name})
			}
			profile, xe := config.ResolveNamed(cfg, name)
			if xe != nil {
				return xe
			}

			result := map[string]any{
				"config_path":        cfgPath,
				"name":               name,
				"description":        profile.Description,
				"endpoint":           profile.Endpoint,
				"scope":              profile.Scope,
				"timeout":            profile.Timeout.Round(time.Millisecond).String(),
				"mode":               profileMode(profile),
				"unsafe_allow_write": profile.UnsafeAllowWrite,
				"allow_plaintext":    profile.AllowPlaintext,
			}
			if profile.AuthToken != "" {
				result["auth_token"] = redact(profile.AuthToken)
			}
			if profile.SSHConfig != nil {
				result["ssh_proxy"] = profile.SSHProxy
				result["ssh_host"] = profile.SSHConfig.Host
				result["ssh_port"] = profile.SSHConfig.Port
				result["ssh_user"] = profile.SSHConfig.User
				if profile.SSHConfig.IdentityFile != "" {
					result["ssh_identity_file"] = profile.SSHConfig.IdentityFile
				}
			}
			return w.WriteOK(format, result)
		},
	}
}

// redact keeps keyring references visible and hides plaintext secrets.
func redact(secretValue string) string {
	if secret.IsKeyringRef(secretValue) {
		return secretValue
	}
	return "***"
}
