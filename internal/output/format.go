package output

type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

func IsValid(f Format) bool {
	switch f {
	case FormatAuto, FormatJSON, FormatYAML, FormatTable, FormatCSV:
		return true
	default:
		return false
	}
}

// Resolve 把 auto 解析为具体格式：终端用 table，否则 json。
func Resolve(f Format, isTTY bool) Format {
	if f != FormatAuto {
		return f
	}
	if isTTY {
		return FormatTable
	}
	return FormatJSON
}
