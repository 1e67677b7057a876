package csvwriter

import (
	"bufio"
	"io"
	"strings"
)

// Writer 所有字段一律加双引号的 CSV 写入器，字段内的双引号写成两个双引号。
// encoding/csv 只在必要时加引号，导出文件需要固定的格式，所以单独实现。
type Writer struct {
	w *bufio.Writer
}

// New 创建 Writer，写入经过缓冲，结束时需调用 Flush
func New(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write 写入一行
func (w *Writer) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if err := w.w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.w.WriteString(Quote(field)); err != nil {
			return err
		}
	}
	return w.w.WriteByte('\n')
}

// WriteAll 写入多行并 Flush
func (w *Writer) WriteAll(records [][]string) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Quote 给单个字段加引号
func Quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// EncodeRow 把一行编码为字节（含换行），供流式导出逐行产出
func EncodeRow(record []string) []byte {
	var b strings.Builder
	for i, field := range record {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Quote(field))
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
