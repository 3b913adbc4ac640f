package ssh

import (
	"net"
	"os"
	"strconv"
)

const defaultPort = 22

// Options 包含 SSH 跳板连接所需参数。
type Options struct {
	Host           string
	Port           int
	User           string
	IdentityFile   string // 私钥路径
	Passphrase     string // 私钥 passphrase（已解析的明文）
	KnownHostsFile string // 默认 ~/.ssh/known_hosts

	// SkipKnownHostsCheck 跳过 known_hosts 校验（极不推荐！）
	SkipKnownHostsCheck bool
}

func DefaultKnownHostsPath() string {
	return "~/.ssh/known_hosts"
}

// withDefaults 填充端口与用户名（$USER / $USERNAME）。
func (o Options) withDefaults() Options {
	if o.Port == 0 {
		o.Port = defaultPort
	}
	if o.User == "" {
		o.User = os.Getenv("USER")
		if o.User == "" {
			o.User = os.Getenv("USERNAME")
		}
	}
	return o
}

// Addr 返回 host:port。
func (o Options) Addr() string {
	port := o.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(o.Host, strconv.Itoa(port))
}
