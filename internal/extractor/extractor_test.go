package extractor

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = "Jane Doe\njane.doe@example.com\n555-123-4567\n\nEDUCATION\nB.S. Computer Science\n\nEXPERIENCE\nSoftware Engineer at Acme"

func TestExtractEmail(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"单个邮箱", "contact: john_smith+jobs@mail.example.co.uk today", "john_smith+jobs@mail.example.co.uk"},
		{"取第一个", "a.b@x.io and c.d@y.io", "a.b@x.io"},
		{"无邮箱", "no address here @ all", ""},
		{"空文本", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEmail(tt.text))
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"横线分隔", "call 555-123-4567 now", "555-123-4567"},
		{"国家码和区号", "Tel: +1 (555) 123-4567", "+1 (555) 123-4567"},
		{"点分隔", "555.123.4567", "555.123.4567"},
		{"七位号码", "ext 123 4567", "123 4567"},
		{"无号码", "no digits", ""},
		{"数字太短", "12-34", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPhone(tt.text))
		})
	}
}

func TestExtractPhone_PermissiveMatch(t *testing.T) {
	// 任意7位以上数字串也会被识别，这是已知的取舍
	assert.NotEmpty(t, ExtractPhone("Order ID 20231115"))
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"首行即姓名", sampleResume, "Jane Doe"},
		{"跳过联系方式", "jane@example.com\n+1 555 123 4567\n  Jane Doe  \n", "Jane Doe"},
		{"跳过单字符行", "J\n-\nJane Doe", "Jane Doe"},
		{"前置空行被忽略", "\n\n   \n\t\nJane Doe\n", "Jane Doe"},
		{"空文本", "", ""},
		{"仅联系方式", "jane@example.com\n555-123-4567", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractName(tt.text))
		})
	}
}

func TestExtractName_OnlyFirstTenLines(t *testing.T) {
	lines := make([]string, 0, 11)
	for i := 0; i < 10; i++ {
		lines = append(lines, "x")
	}
	lines = append(lines, "Jane Doe")
	assert.Empty(t, ExtractName(strings.Join(lines, "\n")))

	lines[9] = "Jane Doe"
	assert.Equal(t, "Jane Doe", ExtractName(strings.Join(lines, "\n")))
}

func TestExtractName_WhitespaceOnlyDocument(t *testing.T) {
	text := strings.Repeat("   \n\t\n", 10)
	assert.Empty(t, ExtractName(text))
}

func TestExtractName_NeverContact(t *testing.T) {
	inputs := []string{
		sampleResume,
		"jane@example.com Jane\nPhone 555 123 4567\nJane Doe",
		"555-123-4567 Jane\nJane",
		"",
	}
	for _, in := range inputs {
		name := ExtractName(in)
		assert.False(t, emailRegex.MatchString(name), "name=%q", name)
		assert.False(t, phoneRegex.MatchString(name), "name=%q", name)
	}
}

func TestExtractSkills(t *testing.T) {
	t.Run("大小写不敏感", func(t *testing.T) {
		assert.Contains(t, ExtractSkills("Senior PyThOn developer"), "python")
	})

	t.Run("子串匹配", func(t *testing.T) {
		got := ExtractSkills("JavaScript and GitHub; expressed interest")
		assert.Equal(t, []string{"express", "git", "github", "java", "javascript"}, got)
	})

	t.Run("多词技能", func(t *testing.T) {
		got := ExtractSkills("Built REST API dashboards in Power BI, edited in Premiere Pro")
		assert.Equal(t, []string{"power bi", "premiere pro", "rest api"}, got)
	})

	t.Run("无匹配返回空切片", func(t *testing.T) {
		got := ExtractSkills("plain words only")
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestExtractSkills_SortedUniqueMembers(t *testing.T) {
	text := "python python PYTHON docker Docker kubernetes aws sql mysql postgresql c++ c# html css"
	got := ExtractSkills(text)

	assert.True(t, sort.StringsAreSorted(got))
	seen := map[string]bool{}
	vocab := map[string]bool{}
	for _, s := range DefaultVocabulary().Skills {
		vocab[s] = true
	}
	for _, s := range got {
		assert.False(t, seen[s], "重复技能 %s", s)
		seen[s] = true
		assert.True(t, vocab[s], "%s 不在词表中", s)
	}
}

func TestExtractBasicFields_Scenario(t *testing.T) {
	fields := ExtractBasicFields(sampleResume)

	assert.Equal(t, "Jane Doe", fields.Name)
	assert.Equal(t, "jane.doe@example.com", fields.Email)
	assert.Equal(t, "555-123-4567", fields.Phone)
	assert.Contains(t, fields.Education, "B.S. Computer Science")
	assert.Contains(t, fields.Experience, "Software Engineer at Acme")
	assert.Empty(t, fields.Projects)
}

func TestExtractBasicFields_NoMatches(t *testing.T) {
	for _, text := range []string{"", "a\n\nb\n c "} {
		fields := ExtractBasicFields(text)
		assert.Empty(t, fields.Name)
		assert.Empty(t, fields.Email)
		assert.Empty(t, fields.Phone)
		assert.NotNil(t, fields.Skills)
		assert.Empty(t, fields.Skills)
		assert.Empty(t, fields.Education)
		assert.Empty(t, fields.Experience)
		assert.Empty(t, fields.Projects)
	}
}

func TestExtractBasicFields_JSONHasAllKeys(t *testing.T) {
	data, err := json.Marshal(ExtractBasicFields(""))
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"name", "email", "phone", "skills", "education", "experience", "projects"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, []interface{}{}, m["skills"])
}

func TestExtractor_ConcurrentUse(t *testing.T) {
	e := Default()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				fields := e.ExtractBasicFields(sampleResume)
				assert.Equal(t, "Jane Doe", fields.Name)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
