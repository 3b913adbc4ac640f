package secret

import (
	"fmt"
	"testing"

	"github.com/zx06/zcrm/internal/errors"
)

// mockKeyring 模拟 keyring 实现，用于单元测试
type mockKeyring struct {
	data map[string]map[string]string // service -> account -> value
}

func newMockKeyring() *mockKeyring {
	return &mockKeyring{data: make(map[string]map[string]string)}
}

func (m *mockKeyring) set(service, account, value string) {
	if m.data[service] == nil {
		m.data[service] = make(map[string]string)
	}
	m.data[service][account] = value
}

func (m *mockKeyring) Get(service, account string) (string, error) {
	if v, ok := m.data[service][account]; ok {
		return v, nil
	}
	return "", fmt.Errorf("not found: %s/%s", service, account)
}

func (m *mockKeyring) Set(service, account, value string) error {
	m.set(service, account, value)
	return nil
}

func (m *mockKeyring) Delete(service, account string) error {
	delete(m.data[service], account)
	return nil
}

func TestParseKeyringRef(t *testing.T) {
	tests := []struct {
		name        string
		ref         string
		wantAccount string
		wantErr     bool
	}{
		{name: "simple account", ref: "authtoken", wantAccount: "authtoken"},
		{name: "profile path", ref: "prod/authtoken", wantAccount: "prod/authtoken"},
		{name: "ssh passphrase", ref: "ssh/bastion/passphrase", wantAccount: "ssh/bastion/passphrase"},
		{name: "surrounding spaces", ref: "  mcp/token ", wantAccount: "mcp/token"},
		{name: "empty ref", ref: "", wantErr: true},
		{name: "blank ref", ref: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, account, xe := parseKeyringRef(tt.ref)
			if tt.wantErr {
				if xe == nil || xe.Code != errors.CodeCfgInvalid {
					t.Fatalf("parseKeyringRef(%q) expected ZCRM_CFG_INVALID, got %v", tt.ref, xe)
				}
				return
			}
			if xe != nil {
				t.Fatalf("parseKeyringRef(%q) unexpected error: %v", tt.ref, xe)
			}
			if service != ServiceName || account != tt.wantAccount {
				t.Errorf("parseKeyringRef(%q) = %q/%q, want %q/%q", tt.ref, service, account, ServiceName, tt.wantAccount)
			}
		})
	}
}

func TestResolve_KeyringRef(t *testing.T) {
	kr := newMockKeyring()
	kr.set(ServiceName, "prod/authtoken", "8f2c0a")

	val, xe := Resolve("keyring:prod/authtoken", Options{Keyring: kr})
	if xe != nil {
		t.Fatalf("unexpected err: %v", xe)
	}
	if val != "8f2c0a" {
		t.Fatalf("val=%q, want %q", val, "8f2c0a")
	}
}

func TestResolve_KeyringIgnoresPlaintextFlag(t *testing.T) {
	kr := newMockKeyring()
	kr.set(ServiceName, "tok", "from-keyring")

	val, xe := Resolve("keyring:tok", Options{Keyring: kr, AllowPlaintext: true})
	if xe != nil || val != "from-keyring" {
		t.Fatalf("val=%q err=%v", val, xe)
	}
}

func TestResolve_SpecialCharacters(t *testing.T) {
	kr := newMockKeyring()
	values := []string{"p@ssw0rd!", "token#123$", "密钥123", "пароль", "with space", "tab\there", ""}
	for i, v := range values {
		account := fmt.Sprintf("test%d", i)
		kr.set(ServiceName, account, v)

		got, xe := Resolve("keyring:"+account, Options{Keyring: kr})
		if xe != nil {
			t.Errorf("Resolve(%q) failed: %v", v, xe)
			continue
		}
		if got != v {
			t.Errorf("Resolve: got %q, want %q", got, v)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	kr := newMockKeyring()
	tests := []struct {
		name string
		raw  string
		opts Options
		want errors.Code
	}{
		{name: "keyring miss", raw: "keyring:no_such", opts: Options{Keyring: kr}, want: errors.CodeSecretNotFound},
		{name: "empty keyring ref", raw: "keyring:", opts: Options{Keyring: kr}, want: errors.CodeCfgInvalid},
		{name: "plaintext denied", raw: "plaintext_token", opts: Options{}, want: errors.CodeCfgInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, xe := Resolve(tt.raw, tt.opts)
			if xe == nil || xe.Code != tt.want {
				t.Fatalf("expected %s, got %v", tt.want, xe)
			}
		})
	}
}

func TestResolve_PlaintextAllowed(t *testing.T) {
	val, xe := Resolve("plaintext_token", Options{AllowPlaintext: true})
	if xe != nil {
		t.Fatalf("unexpected err: %v", xe)
	}
	if val != "plaintext_token" {
		t.Fatalf("val=%q", val)
	}
}

func TestIsKeyringRef(t *testing.T) {
	if !IsKeyringRef("keyring:foo") {
		t.Fatal("expected true")
	}
	if IsKeyringRef("plaintext") {
		t.Fatal("expected false")
	}
}
