// Package extractor 从简历纯文本中启发式提取基础字段。
//
// 所有函数均为纯函数，对任意输入(包括空串)都不会失败，未匹配时返回空值。
package extractor

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"resume-parser-go/internal/types"
)

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	// 宽松匹配，会误判部分非电话号码的数字串。数字与空白均按 Unicode 类别匹配
	phoneRegex = regexp.MustCompile(`(\+?\p{Nd}{1,3}[-.` + spaceClass + `]?)?(\(?\p{Nd}{3}\)?[` + spaceClass + `.-]?)?` +
		`\p{Nd}{3}[` + spaceClass + `.-]?\p{Nd}{4}`)
)

// nameScanLines 姓名只在前若干行中查找
const nameScanLines = 10

// Extractor 基于关键词表的字段提取器，构造后只读，可并发使用
type Extractor struct {
	skills  []string
	headers []string
}

// New 使用给定关键词表创建提取器
func New(v Vocabulary) *Extractor {
	v = v.normalize()
	return &Extractor{
		skills:  v.Skills,
		headers: v.Headers,
	}
}

var defaultExtractor = New(DefaultVocabulary())

// Default 返回内置关键词表的提取器
func Default() *Extractor {
	return defaultExtractor
}

// Headers 返回章节标题关键词的副本
func (e *Extractor) Headers() []string {
	return append([]string(nil), e.headers...)
}

// Skills 返回技能关键词的副本
func (e *Extractor) Skills() []string {
	return append([]string(nil), e.skills...)
}

// ExtractEmail 返回文本中第一个邮箱地址
func ExtractEmail(text string) string {
	return emailRegex.FindString(text)
}

// ExtractPhone 返回文本中第一个疑似电话号码
func ExtractPhone(text string) string {
	return phoneRegex.FindString(text)
}

// ExtractName 在前10行中查找第一行既不含邮箱也不含电话、且长度大于1的文本
func ExtractName(text string) string {
	lines := strings.Split(trimSpace(text), "\n")
	if len(lines) > nameScanLines {
		lines = lines[:nameScanLines]
	}
	for _, line := range lines {
		line = trimSpace(line)
		if utf8.RuneCountInString(line) <= 1 {
			continue
		}
		if emailRegex.MatchString(line) || phoneRegex.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}

// ExtractSkills 大小写不敏感的子串匹配，结果去重并按字典序排序
func (e *Extractor) ExtractSkills(text string) []string {
	lowered := toLower(text)
	found := make(map[string]struct{})
	for _, skill := range e.skills {
		if strings.Contains(lowered, skill) {
			found[skill] = struct{}{}
		}
	}

	skills := make([]string, 0, len(found))
	for s := range found {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}

// ExtractEducation 返回第一个包含 education 的章节内容
func (e *Extractor) ExtractEducation(text string) string {
	return e.ExtractSections(text).Education()
}

// ExtractExperience 返回第一个工作或实习经历章节
func (e *Extractor) ExtractExperience(text string) string {
	return e.ExtractSections(text).Experience()
}

// ExtractProjects 返回第一个项目经历章节
func (e *Extractor) ExtractProjects(text string) string {
	return e.ExtractSections(text).Projects()
}

// ExtractBasicFields 汇总全部字段。章节只扫描一次
func (e *Extractor) ExtractBasicFields(text string) types.BasicFields {
	sections := e.ExtractSections(text)
	return types.BasicFields{
		Name:       ExtractName(text),
		Email:      ExtractEmail(text),
		Phone:      ExtractPhone(text),
		Skills:     e.ExtractSkills(text),
		Education:  sections.Education(),
		Experience: sections.Experience(),
		Projects:   sections.Projects(),
	}
}

// ExtractSkills 使用内置关键词表
func ExtractSkills(text string) []string {
	return defaultExtractor.ExtractSkills(text)
}

// ExtractSections 使用内置章节标题
func ExtractSections(text string) *SectionMap {
	return defaultExtractor.ExtractSections(text)
}

// ExtractEducation 使用内置章节标题
func ExtractEducation(text string) string {
	return defaultExtractor.ExtractEducation(text)
}

// ExtractExperience 使用内置章节标题
func ExtractExperience(text string) string {
	return defaultExtractor.ExtractExperience(text)
}

// ExtractProjects 使用内置章节标题
func ExtractProjects(text string) string {
	return defaultExtractor.ExtractProjects(text)
}

// ExtractBasicFields 使用内置关键词表
func ExtractBasicFields(text string) types.BasicFields {
	return defaultExtractor.ExtractBasicFields(text)
}
