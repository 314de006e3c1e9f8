package extractor

import (
	"strings"
	"unicode"
)

// spaceClass 正则字符类内的空白字符，与 str.isspace 的取值一致
const spaceClass = `\t\n\x0b\f\r \x1c-\x1f\x85\xa0\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}`

// isSpace 在 unicode.IsSpace 之外还包含 0x1c-0x1f 信息分隔符
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// trimSpace 去掉首尾空白，空白定义见 isSpace
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// dottedCapitalI 小写化时 İ 展开为 i 加组合上点，而不是单个 i
var dottedCapitalI = strings.NewReplacer("İ", "i̇")

// toLower 完整小写映射
func toLower(s string) string {
	if strings.ContainsRune(s, 'İ') {
		s = dottedCapitalI.Replace(s)
	}
	return strings.ToLower(s)
}
