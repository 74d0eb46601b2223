package extractor

import (
	"regexp"
	"sort"
	"strings"

	"career-agent-go/internal/constants"
)

// DefaultSkills 默认技能参考表，匹配结果保持表内顺序
var DefaultSkills = []string{
	"Python",
	"Machine Learning",
	"Data Analysis",
	"AI",
	"NLP",
	"Leadership",
	"Cloud Computing",
	"Big Data",
	"Java",
	"SQL",
}

// DefaultCertifications 默认证书参考表，匹配结果保持表内顺序
var DefaultCertifications = []string{
	"AWS Certified",
	"Google Cloud Certified",
	"PMP",
	"Scrum Master",
	"Machine Learning Specialization",
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\b\d{10}\b|\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	yearPattern  = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	expPattern   = regexp.MustCompile(`\b(\d+)\s+(years?|months?)\b`)
)

// Extractor 简历字段提取器
// 七个提取例程相互独立，都在同一段输入文本上做单遍模式匹配，
// 无共享状态，对任意输入（含空串）都不会失败，"未命中"是正常返回值而非错误
type Extractor struct {
	skills         []string
	certifications []string
}

// Option 提取器配置选项
type Option func(*Extractor)

// WithSkills 覆盖技能参考表
func WithSkills(skills []string) Option {
	return func(e *Extractor) {
		if len(skills) > 0 {
			e.skills = skills
		}
	}
}

// WithCertifications 覆盖证书参考表
func WithCertifications(certs []string) Option {
	return func(e *Extractor) {
		if len(certs) > 0 {
			e.certifications = certs
		}
	}
}

// New 创建字段提取器，默认使用内置参考表
func New(opts ...Option) *Extractor {
	e := &Extractor{
		skills:         DefaultSkills,
		certifications: DefaultCertifications,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name 提取姓名：取第一行并去除首尾空白
// 已知弱点：不校验首行是否像人名，首行是标题或日期时会原样返回
func (e *Extractor) Name(text string) string {
	if text == "" {
		return constants.NotFoundSentinel
	}
	lines := strings.Split(text, "\n")
	return strings.TrimSpace(lines[0])
}

// Email 提取第一个邮箱地址，即使文本中存在多个也只返回第一个
func (e *Extractor) Email(text string) string {
	if m := emailPattern.FindString(text); m != "" {
		return m
	}
	return constants.NotFoundSentinel
}

// Phone 提取第一个电话号码
// 匹配连续10位数字，或以连字符/点/空格分隔的3-3-4数字组
func (e *Extractor) Phone(text string) string {
	if m := phonePattern.FindString(text); m != "" {
		return m
	}
	return constants.NotFoundSentinel
}

// YearOfPassing 提取毕业年份：所有以19或20开头的4位数字，去重后以", "连接
// 输出按升序排列，保证结果可缓存可比对
// 注意：纯模式匹配，无上下文过滤，电话号码片段等年份样数字也会命中
func (e *Extractor) YearOfPassing(text string) string {
	matches := yearPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return constants.NotFoundSentinel
	}
	seen := make(map[string]struct{}, len(matches))
	var years []string
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		years = append(years, m)
	}
	sort.Strings(years)
	return strings.Join(years, ", ")
}

// Skills 按参考表做大小写不敏感的子串匹配，命中项保持参考表顺序
// 已知弱点：子串匹配会让"AI"、"SQL"等短词命中无关单词内部
func (e *Extractor) Skills(text string) []string {
	return matchReferenceList(text, e.skills)
}

// Experience 提取所有"<数字> <years|months>"片段，按出现顺序以", "连接
func (e *Extractor) Experience(text string) string {
	matches := expPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return constants.NotFoundSentinel
	}
	fragments := make([]string, 0, len(matches))
	for _, m := range matches {
		fragments = append(fragments, m[1]+" "+m[2])
	}
	return strings.Join(fragments, ", ")
}

// Certifications 与Skills同一策略，针对证书参考表
func (e *Extractor) Certifications(text string) []string {
	return matchReferenceList(text, e.certifications)
}

// matchReferenceList 对参考表逐项做大小写不敏感的包含测试
// 返回命中子序列（保持参考表顺序），无命中时返回单元素哨兵序列
func matchReferenceList(text string, reference []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, term := range reference {
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	if len(found) == 0 {
		return []string{constants.NotFoundSentinel}
	}
	return found
}

// Extract 在同一段文本上执行全部七个提取例程并组装记录
// 各例程互不依赖也不短路，总是全部执行
func (e *Extractor) Extract(text string) *Record {
	return &Record{
		Name:           e.Name(text),
		Email:          e.Email(text),
		Phone:          e.Phone(text),
		YearOfPassing:  e.YearOfPassing(text),
		Skills:         e.Skills(text),
		Experience:     e.Experience(text),
		Certifications: e.Certifications(text),
	}
}
