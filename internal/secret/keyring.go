package secret

import (
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringAPI 抽象 OS keyring，测试时可注入 mock。
// service 固定为 ServiceName，account 即 keyring: 之后的引用（如 prod/authtoken）。
type KeyringAPI interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
	Delete(service, account string) error
}

func defaultKeyring() KeyringAPI {
	return osKeyring{}
}

// osKeyring 基于 zalando/go-keyring。
type osKeyring struct{}

func (osKeyring) Get(service, account string) (string, error) {
	val, err := keyring.Get(service, account)
	if err != nil {
		return "", err
	}
	return cleanSecret(val), nil
}

func (osKeyring) Set(service, account, value string) error {
	return keyring.Set(service, account, cleanSecret(value))
}

func (osKeyring) Delete(service, account string) error {
	return keyring.Delete(service, account)
}

// cleanSecret 去掉 Windows cmdkey 写入的 null 字节以及首尾空白。
func cleanSecret(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}
