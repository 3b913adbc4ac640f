package config

import "time"

const (
	DefaultEndpoint = "https://crm.zoho.com/crm/private"
	DefaultScope    = "crmapi"
	DefaultTimeout  = 30 * time.Second
)

// File 表示 zcrm.yaml 的配置结构。
// 约束：配置优先级为 CLI > ENV > Config。
type File struct {
	Profiles   map[string]Profile  `yaml:"profiles"`
	SSHProxies map[string]SSHProxy `yaml:"ssh_proxies"`
	MCP        MCPConfig           `yaml:"mcp"`
}

type Profile struct {
	Description string `yaml:"description"`
	Format      string `yaml:"format"`

	// Zoho CRM API
	Endpoint  string        `yaml:"endpoint"`
	AuthToken string        `yaml:"auth_token"` // 支持 keyring:xxx 引用
	Scope     string        `yaml:"scope"`
	Timeout   time.Duration `yaml:"timeout"`

	// 写操作默认被拦截（insert/update/delete/upload）
	UnsafeAllowWrite bool `yaml:"unsafe_allow_write"`
	AllowPlaintext   bool `yaml:"allow_plaintext"`

	// SSH proxy（可选，引用 ssh_proxies 中的名字）
	SSHProxy  string    `yaml:"ssh_proxy"`
	SSHConfig *SSHProxy `yaml:"-"` // Resolve 时填充
}

// SSHProxy 是可被多个 profile 复用的跳板机配置。
type SSHProxy struct {
	Host           string `yaml:"host" json:"host"`
	Port           int    `yaml:"port" json:"port"`
	User           string `yaml:"user" json:"user,omitempty"`
	IdentityFile   string `yaml:"identity_file" json:"identity_file,omitempty"`
	Passphrase     string `yaml:"passphrase" json:"-"` // 支持 keyring:xxx 引用
	KnownHostsFile string `yaml:"known_hosts_file" json:"known_hosts_file,omitempty"`
	SkipHostKey    bool   `yaml:"skip_host_key" json:"skip_host_key,omitempty"` // 极不推荐
}

const (
	MCPTransportStdio          = "stdio"
	MCPTransportStreamableHTTP = "streamable_http"
)

type MCPConfig struct {
	Transport string        `yaml:"transport"`
	HTTP      MCPHTTPConfig `yaml:"http"`
}

type MCPHTTPConfig struct {
	Addr                string `yaml:"addr"`
	AuthToken           string `yaml:"auth_token"` // 支持 keyring:xxx 引用
	AllowPlaintextToken bool   `yaml:"allow_plaintext_token"`
}

type Resolved struct {
	ConfigPath  string
	ProfileName string
	Format      string
	Profile     Profile // 已填充默认值与 SSHConfig
}

type Options struct {
	// ConfigPath: 若非空，则只读取该文件（不存在报错）。
	ConfigPath string

	// CLI
	CLIProfile    string
	CLIProfileSet bool
	CLIFormat     string
	CLIFormatSet  bool

	// ENV（由调用方注入，便于测试）
	EnvProfile string
	EnvFormat  string

	// HomeDir 用于默认路径计算（为空则自动探测）。
	HomeDir string

	// WorkDir 用于默认路径（为空则使用进程当前工作目录）。
	WorkDir string
}
