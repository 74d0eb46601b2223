package extractor

import (
	"strings"
	"testing"

	"career-agent-go/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractAlwaysPopulatesAllFields 验证任意输入下七个字段键都存在且非空
func TestExtractAlwaysPopulatesAllFields(t *testing.T) {
	e := New()

	inputs := []string{
		"",
		"Jane Doe\nSWE",
		"完全无关的文本 without any matchable field",
	}

	for _, input := range inputs {
		record := e.Extract(input)
		require.NotNil(t, record, "记录不应为nil")

		fields := record.Fields()
		require.Len(t, fields, 7, "记录应恰好包含七个字段键")
		for _, key := range []string{
			FieldName, FieldEmail, FieldPhone, FieldYearOfPassing,
			FieldSkills, FieldExperience, FieldCertifications,
		} {
			value, ok := fields[key]
			assert.True(t, ok, "字段键 %q 缺失", key)
			assert.NotNil(t, value, "字段键 %q 不应为nil", key)
		}
	}
}

// TestExtractEmptyInputYieldsSentinelEverywhere 空输入对每个字段都返回哨兵
func TestExtractEmptyInputYieldsSentinelEverywhere(t *testing.T) {
	e := New()
	record := e.Extract("")

	assert.Equal(t, constants.NotFoundSentinel, record.Name)
	assert.Equal(t, constants.NotFoundSentinel, record.Email)
	assert.Equal(t, constants.NotFoundSentinel, record.Phone)
	assert.Equal(t, constants.NotFoundSentinel, record.YearOfPassing)
	assert.Equal(t, []string{constants.NotFoundSentinel}, record.Skills)
	assert.Equal(t, constants.NotFoundSentinel, record.Experience)
	assert.Equal(t, []string{constants.NotFoundSentinel}, record.Certifications)
}

func TestName(t *testing.T) {
	e := New()

	assert.Equal(t, "Jane Doe", e.Name("Jane Doe\nSWE"), "应返回去除空白后的首行")
	assert.Equal(t, constants.NotFoundSentinel, e.Name(""))
	// 已知弱点：首行不是人名时原样返回
	assert.Equal(t, "RESUME 2024", e.Name("RESUME 2024\nJane Doe"))
	assert.Equal(t, "Jane Doe", e.Name("  Jane Doe  \nSWE"))
}

func TestEmail(t *testing.T) {
	e := New()

	assert.Equal(t, "a.b@example.com", e.Email("contact me at a.b@example.com today"))
	assert.Equal(t, constants.NotFoundSentinel, e.Email("no email here"))
	// 多个邮箱时只返回第一个
	assert.Equal(t, "first@example.com", e.Email("first@example.com second@example.com"))
}

func TestPhone(t *testing.T) {
	e := New()

	assert.Equal(t, "555-123-4567", e.Phone("call 555-123-4567"))
	assert.Equal(t, "9876543210", e.Phone("id 9876543210"))
	assert.Equal(t, "555.123.4567", e.Phone("call 555.123.4567"))
	assert.Equal(t, "555 123 4567", e.Phone("call 555 123 4567"))
	assert.Equal(t, constants.NotFoundSentinel, e.Phone("call me maybe"))
}

func TestYearOfPassing(t *testing.T) {
	e := New()

	// 去重：2020出现两次但只保留一次，顺序确定为升序
	got := e.YearOfPassing("Graduated 2020, born 1998, room 2020")
	assert.Equal(t, "1998, 2020", got)

	assert.Equal(t, constants.NotFoundSentinel, e.YearOfPassing("no years at all"))
	// 1900之前和2100之后的4位数字不命中
	assert.Equal(t, constants.NotFoundSentinel, e.YearOfPassing("room 1889 and 2100"))
	// 已知弱点：无上下文过滤，任何年份样数字都命中
	assert.Equal(t, "2023", e.YearOfPassing("invoice number 2023"))
}

func TestSkills(t *testing.T) {
	e := New()

	// 命中项保持参考表顺序：Python在SQL之前
	assert.Equal(t, []string{"Python", "SQL"}, e.Skills("I know SQL and Python"))
	// 大小写不敏感
	assert.Equal(t, []string{"Python"}, e.Skills("I KNOW PYTHON"))
	// 无命中返回单元素哨兵序列
	assert.Equal(t, []string{constants.NotFoundSentinel}, e.Skills("I know nothing"))
	// 已知弱点：短词在无关单词内部也会命中（"AI"在"maintained"中）
	assert.Contains(t, e.Skills("maintained legacy systems"), "AI")
}

func TestExperience(t *testing.T) {
	e := New()

	assert.Equal(t, "5 years", e.Experience("worked for 5 years at ACME"))
	assert.Equal(t, "5 years, 6 months", e.Experience("5 years in dev, 6 months in ops"))
	// 单数形式也命中
	assert.Equal(t, "1 year", e.Experience("1 year of Go"))
	assert.Equal(t, constants.NotFoundSentinel, e.Experience("plenty of experience"))
}

func TestCertifications(t *testing.T) {
	e := New()

	assert.Equal(t, []string{constants.NotFoundSentinel}, e.Certifications("no certs listed"))
	assert.Equal(t,
		[]string{"AWS Certified", "Scrum Master"},
		e.Certifications("Scrum Master and aws certified since 2021"))
}

// TestExtractIdempotent 相同输入重复提取结果一致（纯函数，无隐藏状态）
func TestExtractIdempotent(t *testing.T) {
	e := New()
	text := "Jane Doe\njane@example.com\n555-123-4567\nPython, SQL, 5 years, graduated 2020"

	first := e.Extract(text)
	second := e.Extract(text)
	assert.Equal(t, first, second)
}

// TestCustomReferenceLists 参考表是显式配置数据，可独立于匹配逻辑扩展
func TestCustomReferenceLists(t *testing.T) {
	e := New(
		WithSkills([]string{"Go", "Rust"}),
		WithCertifications([]string{"CKA"}),
	)

	assert.Equal(t, []string{"Go", "Rust"}, e.Skills("I write Go and Rust"))
	assert.Equal(t, []string{"CKA"}, e.Certifications("CKA holder"))
	// 默认表中的词不再命中
	assert.Equal(t, []string{constants.NotFoundSentinel}, e.Skills("Python only"))
}

func TestFieldsMapKeys(t *testing.T) {
	e := New()
	fields := e.Extract("Jane Doe\njane@example.com").Fields()

	// 外部边界的键名是固定约定，包括带括号的YOP键
	_, ok := fields["Year of Passing (YOP)"]
	assert.True(t, ok)

	name, _ := fields[FieldName].(string)
	assert.Equal(t, "Jane Doe", name)
}

// TestLongInputTerminates 提取时间与文本长度成正比，长文本也应正常完成
func TestLongInputTerminates(t *testing.T) {
	e := New()
	text := strings.Repeat("filler text without matches ", 10000)
	record := e.Extract(text)
	assert.Equal(t, constants.NotFoundSentinel, record.Email)
}
