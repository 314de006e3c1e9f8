package extractor

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// SectionMap 章节标题到章节内容的映射，保留首次写入的顺序
type SectionMap struct {
	keys   []string
	values map[string]string
}

func newSectionMap() *SectionMap {
	return &SectionMap{values: make(map[string]string)}
}

// set 覆盖已有标题时保留其原位置
func (m *SectionMap) set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get 获取指定标题的内容
func (m *SectionMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys 按顺序返回所有标题
func (m *SectionMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len 章节数量
func (m *SectionMap) Len() int {
	return len(m.keys)
}

// firstMatch 返回第一个 key 包含任一关键字的章节内容
func (m *SectionMap) firstMatch(needles ...string) string {
	for _, k := range m.keys {
		for _, n := range needles {
			if strings.Contains(k, n) {
				return m.values[k]
			}
		}
	}
	return ""
}

// Education 教育经历
func (m *SectionMap) Education() string { return m.firstMatch("education") }

// Experience 工作或实习经历
func (m *SectionMap) Experience() string { return m.firstMatch("experience", "internship") }

// Projects 项目经历
func (m *SectionMap) Projects() string { return m.firstMatch("project") }

// MarshalJSON 按章节出现顺序输出对象
func (m *SectionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExtractSections 逐行扫描，按章节标题切分文本。
// 标题行本身不计入内容；同一标题多次出现时以最后一次为准。
func (e *Extractor) ExtractSections(text string) *SectionMap {
	sections := newSectionMap()
	current := ""
	var buffer []string

	flush := func() {
		if current != "" && len(buffer) > 0 {
			sections.set(current, trimSpace(strings.Join(buffer, "\n")))
			buffer = buffer[:0]
		}
	}

	for _, line := range splitLines(text) {
		clean := toLower(trimSpace(line))
		if header := e.matchHeader(clean); header != "" {
			flush()
			current = header
			continue
		}
		if current != "" {
			buffer = append(buffer, line)
		}
	}
	flush()

	return sections
}

// matchHeader 按列表顺序返回第一个被包含的标题
func (e *Extractor) matchHeader(line string) string {
	for _, h := range e.headers {
		if strings.Contains(line, h) {
			return h
		}
	}
	return ""
}

// splitLines 按所有常见换行符切分，末尾换行不产生空行
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := decodeBreak(text[i:])
		if size == 0 {
			i++
			continue
		}
		lines = append(lines, text[start:i])
		if r == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			size = 2
		}
		i += size
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// decodeBreak 若 s 以换行符开头，返回该字符及其字节长度
func decodeBreak(s string) (rune, int) {
	r, size := utf8.DecodeRuneInString(s)
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return r, size
	}
	return 0, 0
}
