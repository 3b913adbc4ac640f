package errors

// Code 是稳定错误码（字符串），供脚本与 agent 判断。
// 只增不改、不复用旧含义。
type Code string

const (
	// Config / args
	CodeCfgNotFound    Code = "ZCRM_CFG_NOT_FOUND"
	CodeCfgInvalid     Code = "ZCRM_CFG_INVALID"
	CodeSecretNotFound Code = "ZCRM_SECRET_NOT_FOUND"

	// SSH
	CodeSSHAuthFailed      Code = "ZCRM_SSH_AUTH_FAILED"
	CodeSSHHostKeyMismatch Code = "ZCRM_SSH_HOSTKEY_MISMATCH"
	CodeSSHDialFailed      Code = "ZCRM_SSH_DIAL_FAILED"

	// Transport
	CodeTransportFailed Code = "ZCRM_TRANSPORT_FAILED"

	// Read-only policy
	CodeROBlocked Code = "ZCRM_RO_BLOCKED"

	// Zoho 响应
	CodeVendorError       Code = "ZCRM_VENDOR_ERROR"
	CodeNoData            Code = "ZCRM_NO_DATA"
	CodeMalformedResponse Code = "ZCRM_MALFORMED_RESPONSE"

	// 请求编码
	CodeEncodeFailed Code = "ZCRM_ENCODE_FAILED"

	// Internal
	CodeInternal Code = "ZCRM_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeSecretNotFound,
		CodeSSHAuthFailed,
		CodeSSHHostKeyMismatch,
		CodeSSHDialFailed,
		CodeTransportFailed,
		CodeROBlocked,
		CodeVendorError,
		CodeNoData,
		CodeMalformedResponse,
		CodeEncodeFailed,
		CodeInternal,
	}
}
