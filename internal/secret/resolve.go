package secret

import (
	"strings"

	"github.com/zx06/zcrm/internal/errors"
)

// ServiceName 是 zcrm 在 OS keyring 中使用的 service。
const ServiceName = "zcrm"

const keyringPrefix = "keyring:"

// Options 控制 secret 解析行为。
type Options struct {
	AllowPlaintext bool       // 是否允许明文（默认 false）
	Keyring        KeyringAPI // 可注入的 keyring 实现（nil 则用默认）
}

// Resolve 解析 secret 值（auth token、SSH passphrase、MCP token）：
//  1. keyring:<account> → 从 keyring（service=zcrm）读取
//  2. 否则若为明文且允许明文 → 直接返回
//  3. 否则报错
func Resolve(raw string, opts Options) (string, *errors.XError) {
	if IsKeyringRef(raw) {
		service, account, xe := parseKeyringRef(strings.TrimPrefix(raw, keyringPrefix))
		if xe != nil {
			return "", xe
		}
		kr := opts.Keyring
		if kr == nil {
			kr = defaultKeyring()
		}
		val, err := kr.Get(service, account)
		if err != nil {
			return "", errors.Wrap(errors.CodeSecretNotFound, "failed to read secret from keyring",
				map[string]any{"service": service, "account": account}, err)
		}
		return val, nil
	}
	if opts.AllowPlaintext {
		return raw, nil
	}
	return "", errors.New(errors.CodeCfgInvalid, "plaintext secret not allowed; use keyring: reference or set allow_plaintext", nil)
}

// parseKeyringRef 把 keyring: 之后的部分解析为 (service, account)。
// account 可以带路径（如 prod/authtoken），service 固定为 ServiceName。
func parseKeyringRef(ref string) (string, string, *errors.XError) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", errors.New(errors.CodeCfgInvalid, "empty keyring reference", nil)
	}
	return ServiceName, ref, nil
}

// IsKeyringRef 判断值是否为 keyring 引用。
func IsKeyringRef(s string) bool {
	return strings.HasPrefix(s, keyringPrefix)
}
