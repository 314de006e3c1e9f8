package constants

const (
	// ParserVersion 字段提取规则版本，写入解析记录与事件
	ParserVersion = "1.0"

	// EventTypeResumeParsed 简历解析完成事件
	EventTypeResumeParsed = "resume.parsed"

	// AggregateTypeResume outbox 聚合类型
	AggregateTypeResume = "resume"

	// MessageParsedOK 解析成功响应文案
	MessageParsedOK = "Resume parsed successfully"
	// MessageUnsupportedType 不支持的文件类型响应文案
	MessageUnsupportedType = "Only PDF and DOCX files are supported."
)
