// Package document 将单个字幕 XML 条目解析为内存文档。
// 解析失败从不上抛：畸形/截断的 XML 退化为空文档（无行、无元数据）。
package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"opussub/internal/textutil"
	"opussub/pkg/contract"
)

// Document: 单条目的一次性解析结果。
// 元数据在解析期一次性求值并以可选字段存储；缺失即 absent，不惰性求值。
type Document struct {
	raw       []string // .//s/text() 原始文本节点（未裁剪）
	malformed bool     // 语法失败回落标记（仅用于告警，不影响语义）

	language          *string  // .//meta/subtitle/language/text()
	original          string   // .//meta/source/original/text() 首个逗号段，已裁剪；缺失为空串
	confidence        *float64 // .//meta/subtitle/confidence/text()
	machineTranslated *bool    // .//meta/subtitle/machine_translated/text()（"0"/"1"）
}

// 元数据叶子的路径后缀（固定集合，解析期一次求值）。
var (
	pathOriginal   = []string{"meta", "source", "original"}
	pathLanguage   = []string{"meta", "subtitle", "language"}
	pathConfidence = []string{"meta", "subtitle", "confidence"}
	pathMachine    = []string{"meta", "subtitle", "machine_translated"}
)

// Parse 从原始字节解析文档。任何语法错误都回落为空文档。
func Parse(raw []byte) *Document {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charsetReader

	var (
		doc     Document
		stack   []string
		buf     strings.Builder
		pending bool
	)
	// flush: 将缓冲中的文本作为一个文本节点提交给当前栈顶元素。
	flush := func() {
		if !pending {
			return
		}
		text := buf.String()
		buf.Reset()
		pending = false
		if len(stack) == 0 {
			return
		}
		if stack[len(stack)-1] == "s" {
			doc.raw = append(doc.raw, text)
			return
		}
		// 元数据：仅首个文本节点生效。
		switch {
		case doc.original == "" && suffixIs(stack, pathOriginal):
			doc.original = strings.TrimSpace(strings.SplitN(text, ",", 2)[0])
		case doc.language == nil && suffixIs(stack, pathLanguage):
			v := strings.TrimSpace(text)
			doc.language = &v
		case doc.confidence == nil && suffixIs(stack, pathConfidence):
			if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
				doc.confidence = &f
			}
		case doc.machineTranslated == nil && suffixIs(stack, pathMachine):
			if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
				b := n != 0
				doc.machineTranslated = &b
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 语法失败 → 空文档回落（等价于解析一份最小空文档）。
			return &Document{malformed: true}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			flush()
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			flush()
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			buf.Write(t)
			pending = true
		}
	}
	return &doc
}

// suffixIs: 栈路径是否以给定段序列结尾。
func suffixIs(stack, suffix []string) bool {
	if len(stack) < len(suffix) {
		return false
	}
	off := len(stack) - len(suffix)
	for i, s := range suffix {
		if stack[off+i] != s {
			return false
		}
	}
	return true
}

// charsetReader: 依据 XML 声明的编码名构造解码读取器（ianaindex 查表）。
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Malformed 报告解析是否因语法错误回落为空文档。
func (d *Document) Malformed() bool { return d.malformed }

// Lines 返回裁剪后的非空行序列，保持原始顺序。
// dedup 时折叠连续重复行（仅相邻重复，非全局）。
func (d *Document) Lines(dedup bool) []string {
	lines := textutil.StripWhitespace(d.raw)
	if dedup {
		lines = textutil.DeduplicateConsecutive(lines)
	}
	return lines
}

// Language 返回声明的字幕语言；缺失时 ok=false。
func (d *Document) Language() (string, bool) {
	if d.language == nil {
		return "", false
	}
	return *d.language, true
}

// Original 返回原始语言名（首个逗号段，已裁剪）；缺失为空串。
func (d *Document) Original() string { return d.original }

// Confidence 返回置信度；缺失时 ok=false。
func (d *Document) Confidence() (float64, bool) {
	if d.confidence == nil {
		return 0, false
	}
	return *d.confidence, true
}

// MachineTranslated 返回机翻标记；缺失时 ok=false。
func (d *Document) MachineTranslated() (bool, bool) {
	if d.machineTranslated == nil {
		return false, false
	}
	return *d.machineTranslated, true
}

// LanguageCode 将原始语言名经解析器折叠为宏语言 ISO 639-3 码；无法识别为空串。
func (d *Document) LanguageCode(r contract.Resolver) string {
	if d.original == "" || r == nil {
		return ""
	}
	return r.Resolve(d.original).MacroCode
}
