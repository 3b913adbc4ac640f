package spec

import (
	"strings"

	"github.com/zx06/zcrm/internal/errors"
)

// FlagSpec 描述一个命令行 flag；Env 非空表示可由环境变量提供。
type FlagSpec struct {
	Name        string `json:"name" yaml:"name"`
	Shorthand   string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Env         string `json:"env,omitempty" yaml:"env,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type CommandSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Flags       []FlagSpec `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// OperationSpec 描述一个 Zoho 远程方法；Write 为 true 时需要 unsafe_allow_write。
type OperationSpec struct {
	Name  string `json:"name" yaml:"name"`
	Write bool   `json:"write" yaml:"write"`
}

// Spec 是 `zcrm spec` 的输出，供 agent 发现命令、远程方法与错误码。
type Spec struct {
	SchemaVersion int             `json:"schema_version" yaml:"schema_version"`
	Commands      []CommandSpec   `json:"commands" yaml:"commands"`
	Operations    []OperationSpec `json:"operations" yaml:"operations"`
	ErrorCodes    []errors.Code   `json:"error_codes" yaml:"error_codes"`
}

// Command 按名称查找命令，名称可省略参数占位符（如 "records get"）。
func (s Spec) Command(name string) (CommandSpec, bool) {
	for _, c := range s.Commands {
		if c.Name == name {
			return c, true
		}
		if rest, ok := strings.CutPrefix(c.Name, name+" "); ok && strings.HasPrefix(rest, "<") {
			return c, true
		}
	}
	return CommandSpec{}, false
}
