package extractor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultSkills 内置技能关键词表 (全部小写)
var defaultSkills = []string{
	"python", "java", "c++", "c#", "javascript", "typescript", "html", "css",
	"react", "angular", "vue", "node.js", "express", "next.js",
	"flutter", "dart", "swift", "kotlin",
	"sql", "mysql", "postgresql", "mongodb", "firebase",
	"docker", "kubernetes", "aws", "azure", "gcp",
	"git", "github", "jira", "linux", "bash",
	"fastapi", "django", "flask", "rest api", "graphql",
	"pandas", "numpy", "matplotlib", "tensorflow", "pytorch", "sklearn",
	"excel", "power bi", "tableau", "figma", "corel draw", "after effects", "photoshop", "premiere pro",
}

// defaultHeaders 章节标题关键词，按匹配优先级排列，顺序不可调整
var defaultHeaders = []string{
	"education",
	"work experience",
	"experience",
	"professional experience",
	"projects",
	"academic projects",
	"personal projects",
	"internship",
}

// Vocabulary 提取器使用的关键词表
type Vocabulary struct {
	Skills  []string `yaml:"skills"`  // 技能关键词
	Headers []string `yaml:"headers"` // 章节标题关键词 (有序)
}

// DefaultVocabulary 返回内置关键词表的副本
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Skills:  append([]string(nil), defaultSkills...),
		Headers: append([]string(nil), defaultHeaders...),
	}
}

// LoadVocabulary 从YAML文件加载关键词表，缺失的列表使用内置默认值
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("读取关键词文件失败: %w", err)
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("解析关键词文件失败: %w", err)
	}
	return v.normalize(), nil
}

// normalize 统一小写、去除空白与空项，空列表回落为默认值
func (v Vocabulary) normalize() Vocabulary {
	out := Vocabulary{
		Skills:  cleanWords(v.Skills),
		Headers: cleanWords(v.Headers),
	}
	if len(out.Skills) == 0 {
		out.Skills = append([]string(nil), defaultSkills...)
	}
	if len(out.Headers) == 0 {
		out.Headers = append([]string(nil), defaultHeaders...)
	}
	return out
}

func cleanWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		w = toLower(trimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		result = append(result, w)
	}
	return result
}
