package errors

// ExitCode 是进程退出码（稳定契约）。
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: 参数/配置错误
	ExitConfig ExitCode = 2

	// 3: 连接错误（HTTP/SSH）
	ExitConnect ExitCode = 3

	// 4: 只读策略拦截写入
	ExitReadOnly ExitCode = 4

	// 5: Zoho 返回 error 节点
	ExitVendor ExitCode = 5

	// 6: Zoho 返回 nodata 节点
	ExitNoData ExitCode = 6

	// 7: 响应无法解析或形状未知
	ExitMalformed ExitCode = 7

	// 8: 请求编码失败
	ExitEncode ExitCode = 8

	// 10: 内部错误
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid, CodeSecretNotFound:
		return ExitConfig
	case CodeSSHAuthFailed, CodeSSHHostKeyMismatch, CodeSSHDialFailed, CodeTransportFailed:
		return ExitConnect
	case CodeROBlocked:
		return ExitReadOnly
	case CodeVendorError:
		return ExitVendor
	case CodeNoData:
		return ExitNoData
	case CodeMalformedResponse:
		return ExitMalformed
	case CodeEncodeFailed:
		return ExitEncode
	case CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}
