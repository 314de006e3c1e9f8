package types

import (
	"bytes"
	"encoding/json"
)

// FieldType 表示结构化记录中的字段
type FieldType string

const (
	// FieldName 姓名
	FieldName FieldType = "name"
	// FieldEmail 邮箱
	FieldEmail FieldType = "email"
	// FieldPhone 电话
	FieldPhone FieldType = "phone"
	// FieldSkills 技能
	FieldSkills FieldType = "skills"
	// FieldEducation 教育经历
	FieldEducation FieldType = "education"
	// FieldExperience 工作/实习经历
	FieldExperience FieldType = "experience"
	// FieldProjects 项目经历
	FieldProjects FieldType = "projects"
)

// BasicFields 启发式提取出的七个固定字段
type BasicFields struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Skills     []string `json:"skills"`
	Education  string   `json:"education"`
	Experience string   `json:"experience"`
	Projects   string   `json:"projects"`
}

// MarshalJSON 保证 skills 为空时输出 [] 而不是 null
func (b BasicFields) MarshalJSON() ([]byte, error) {
	type alias BasicFields
	if b.Skills == nil {
		b.Skills = []string{}
	}
	return marshalRaw(alias(b))
}

// ParsedResume 单份简历的解析结果，包含调用方附加的文件元数据
type ParsedResume struct {
	BasicFields
	FileName string `json:"file_name"`
	FileID   string `json:"file_id"`
}

// MarshalJSON 展平 BasicFields 并附加文件元数据
func (p ParsedResume) MarshalJSON() ([]byte, error) {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return marshalRaw(struct {
		Name       string   `json:"name"`
		Email      string   `json:"email"`
		Phone      string   `json:"phone"`
		Skills     []string `json:"skills"`
		Education  string   `json:"education"`
		Experience string   `json:"experience"`
		Projects   string   `json:"projects"`
		FileName   string   `json:"file_name"`
		FileID     string   `json:"file_id"`
	}{
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		Skills:     skills,
		Education:  p.Education,
		Experience: p.Experience,
		Projects:   p.Projects,
		FileName:   p.FileName,
		FileID:     p.FileID,
	})
}

// marshalRaw 与 json.Marshal 相同，但不转义 & < >
func marshalRaw(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ResumeParsedEvent 解析完成后通过消息队列发布的事件
type ResumeParsedEvent struct {
	FileID     string   `json:"file_id"`
	FileName   string   `json:"file_name"`
	MD5        string   `json:"md5,omitempty"`
	Name       string   `json:"name,omitempty"`
	Skills     []string `json:"skills"`
	ObjectKey  string   `json:"object_key,omitempty"`
	ParsedAt   int64    `json:"parsed_at"`
	TextLength int      `json:"text_length"`
}
