package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/utils"
)

// 解析记录状态
const (
	StatusParsed = "PARSED"
	StatusFailed = "FAILED"
)

// ParsedResume 简历解析结果表，字段与返回给调用方的记录一一对应
type ParsedResume struct {
	FileID           string         `gorm:"type:char(36);primaryKey"`
	FileName         string         `gorm:"type:varchar(255)"`
	FileMD5          string         `gorm:"type:char(32);index:idx_pr_file_md5"`
	ObjectKey        string         `gorm:"type:varchar(1024)"`
	Name             string         `gorm:"type:varchar(255)"`
	Email            string         `gorm:"type:varchar(255);index:idx_pr_email"`
	Phone            string         `gorm:"type:varchar(50)"`
	SkillsJSON       datatypes.JSON `gorm:"type:json"`
	Education        string         `gorm:"type:text"`
	Experience       string         `gorm:"type:text"`
	Projects         string         `gorm:"type:text"`
	TextLength       int            `gorm:"default:0"`
	ProcessingStatus string         `gorm:"type:varchar(50);default:'PARSED';index:idx_pr_processing_status"`
	ParserVersion    string         `gorm:"type:varchar(50)"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ParsedResume) TableName() string {
	return "parsed_resumes"
}

// NewParsedResume 从解析结果构建数据库记录
func NewParsedResume(r *types.ParsedResume) *ParsedResume {
	return &ParsedResume{
		FileID:           r.FileID,
		FileName:         r.FileName,
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		SkillsJSON:       utils.ConvertArrayToJSON(r.Skills),
		Education:        r.Education,
		Experience:       r.Experience,
		Projects:         r.Projects,
		ProcessingStatus: StatusParsed,
	}
}

// ToParsedResume 还原为接口返回的解析结果
func (m *ParsedResume) ToParsedResume() (*types.ParsedResume, error) {
	skills := []string{}
	if len(m.SkillsJSON) > 0 {
		if err := json.Unmarshal(m.SkillsJSON, &skills); err != nil {
			return nil, err
		}
	}
	return &types.ParsedResume{
		BasicFields: types.BasicFields{
			Name:       m.Name,
			Email:      m.Email,
			Phone:      m.Phone,
			Skills:     skills,
			Education:  m.Education,
			Experience: m.Experience,
			Projects:   m.Projects,
		},
		FileName: m.FileName,
		FileID:   m.FileID,
	}, nil
}
