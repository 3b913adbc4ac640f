package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/zx06/zcrm/internal/errors"
)

// TableFormatter 由可按行展示的数据实现（记录列表、写操作结果、字段定义、profile 列表）。
type TableFormatter interface {
	ToTableData() (columns []string, rows []map[string]any, ok bool)
}

const nullPlaceholder = "<null>"

type Writer struct {
	Out io.Writer
	Err io.Writer
}

func New(out, err io.Writer) Writer {
	return Writer{Out: out, Err: err}
}

func (w Writer) WriteOK(format Format, data any) error {
	return w.write(format, OK(data))
}

func (w Writer) WriteError(format Format, xe *errors.XError) error {
	return w.write(format, Fail(xe))
}

func (w Writer) write(format Format, env Envelope) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w.Out)
		enc.SetEscapeHTML(false)
		return enc.Encode(env)
	case FormatYAML:
		b, err := yaml.Marshal(env)
		if err != nil {
			return err
		}
		if _, err := w.Out.Write(b); err != nil {
			return err
		}
		if len(b) == 0 || b[len(b)-1] != '\n' {
			_, _ = w.Out.Write([]byte("\n"))
		}
		return nil
	case FormatTable:
		return writeTable(w.Out, env)
	case FormatCSV:
		return writeCSV(w.Out, env)
	default:
		return errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": string(format)})
	}
}

func tableData(data any) ([]string, []map[string]any, bool) {
	if tf, ok := data.(TableFormatter); ok {
		return tf.ToTableData()
	}
	return nil, nil, false
}

func writeTable(out io.Writer, env Envelope) error {
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	if !env.OK {
		if env.Error != nil {
			_, _ = fmt.Fprintf(tw, "error.code\t%s\n", env.Error.Code)
			_, _ = fmt.Fprintf(tw, "error.message\t%s\n", env.Error.Message)
			for _, k := range sortedKeys(env.Error.Details) {
				_, _ = fmt.Fprintf(tw, "error.details.%s\t%s\n", k, formatCellValue(env.Error.Details[k], nullPlaceholder))
			}
		}
		return tw.Flush()
	}

	if columns, rows, ok := tableData(env.Data); ok {
		writeRows(tw, columns, rows)
		return tw.Flush()
	}
	kv, err := toKeyValue(env.Data)
	if err != nil {
		return err
	}
	for _, k := range sortedKeys(kv) {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, formatCellValue(kv[k], nullPlaceholder))
	}
	return tw.Flush()
}

func writeRows(tw io.Writer, columns []string, rows []map[string]any) {
	header := make([]string, len(columns))
	sep := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
		sep[i] = strings.Repeat("-", max(len(c), 3))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	_, _ = fmt.Fprintln(tw, strings.Join(sep, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = formatCellValue(row[c], "")
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	noun := "rows"
	if len(rows) == 1 {
		noun = "row"
	}
	_, _ = fmt.Fprintf(tw, "\n(%d %s)\n", len(rows), noun)
}

func writeCSV(out io.Writer, env Envelope) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()
	if !env.OK {
		_ = cw.Write([]string{"error.code", "error.message"})
		if env.Error != nil {
			_ = cw.Write([]string{string(env.Error.Code), env.Error.Message})
		}
		cw.Flush()
		return cw.Error()
	}

	if columns, rows, ok := tableData(env.Data); ok {
		_ = cw.Write(columns)
		for _, row := range rows {
			rec := make([]string, len(columns))
			for i, c := range columns {
				rec[i] = formatCellValue(row[c], "")
			}
			_ = cw.Write(rec)
		}
		cw.Flush()
		return cw.Error()
	}
	kv, err := toKeyValue(env.Data)
	if err != nil {
		return err
	}
	_ = cw.Write([]string{"key", "value"})
	for _, k := range sortedKeys(kv) {
		_ = cw.Write([]string{k, formatCellValue(kv[k], "")})
	}
	cw.Flush()
	return cw.Error()
}

// toKeyValue 通过 JSON 把任意数据展开成顶层键值；非对象数据放在 "value" 键下。
func toKeyValue(data any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "failed to render output", nil, err)
	}
	var kv map[string]any
	if err := json.Unmarshal(b, &kv); err == nil && kv != nil {
		return kv, nil
	}
	var v any
	_ = json.Unmarshal(b, &v)
	return map[string]any{"value": v}, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// formatCellValue 把单元格值转为文本：nil 用占位符，整数值的 float 不带小数，复合值用紧凑 JSON。
func formatCellValue(v any, null string) string {
	switch x := v.(type) {
	case nil:
		return null
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case fmt.Stringer:
		return x.String()
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(x)
		return strings.TrimSpace(buf.String())
	default:
		return fmt.Sprint(x)
	}
}
