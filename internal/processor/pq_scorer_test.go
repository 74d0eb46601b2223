package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePQEmptyText(t *testing.T) {
	result := CalculatePQ("", 3)
	assert.Equal(t, float64(15), result.Score, "空文本时分数只来自已匹配技能")
	assert.Equal(t, 3, result.SkillsMatched)
	assert.Equal(t, 0, result.LearningSpeed)
	assert.Equal(t, 0, result.Adaptability)
	assert.Equal(t, 0, result.PassionForImprovement)
	assert.Equal(t, 0, result.Certifications)
	assert.Equal(t, 0, result.YearsOfExperience)
}

func TestCalculatePQWeights(t *testing.T) {
	text := "Python developer, 3 years building cloud services with AWS"
	result := CalculatePQ(text, 2)

	assert.Equal(t, 1, result.LearningSpeed, "命中Python")
	assert.Equal(t, 1, result.Adaptability, "命中cloud")
	assert.Equal(t, 0, result.PassionForImprovement)
	assert.Equal(t, 1, result.YearsOfExperience, "命中一处经验提及")
	assert.Equal(t, 1, result.Certifications, "命中AWS")

	// 2*5 + 1*5 + 1*4 + 1*2 + 0*3 + 1*2
	assert.Equal(t, float64(23), result.Score)
}

func TestCalculatePQExperienceMentions(t *testing.T) {
	text := "Worked for 5 years at Acme, then seven months freelance, plus 2 YEARS consulting"
	result := CalculatePQ(text, 0)

	// 数字和英文数词两种写法都计入，大小写不敏感
	assert.Equal(t, 3, result.YearsOfExperience)
	// freelance命中项目关键词
	assert.Equal(t, 1, result.PassionForImprovement)
}

func TestCalculatePQCertificationMentions(t *testing.T) {
	result := CalculatePQ("AWS certified, Azure certification, Scrum Master", 0)
	// AWS + certified + Azure + certification + Scrum Master
	assert.Equal(t, 5, result.Certifications)
}

func TestPQBreakdownKeys(t *testing.T) {
	breakdown := CalculatePQ("", 1).Breakdown()
	for _, key := range []string{
		"pq_score", "skills_matched", "certifications", "learning_speed",
		"adaptability", "passion_for_improvement", "years_of_experience",
	} {
		assert.Contains(t, breakdown, key)
	}
}

func TestCalculateRiskRewardSafe(t *testing.T) {
	rr := CalculateRiskReward(80, 5, 3)
	assert.Equal(t, "Low", rr.RiskLevel)
	assert.Equal(t, "Moderate", rr.RewardLevel)
	assert.Contains(t, rr.Assessment, "Safe Candidate")
	assert.Len(t, rr.Recommendations, 3)
}

func TestCalculateRiskRewardHighRisk(t *testing.T) {
	// 低分触发高风险档
	rr := CalculateRiskReward(40, 5, 3)
	assert.Equal(t, "High", rr.RiskLevel)
	assert.Equal(t, "High", rr.RewardLevel)
	assert.Contains(t, rr.Assessment, "60% match now")

	// 年限不足同样触发
	rr = CalculateRiskReward(60, 3, 1)
	assert.Equal(t, "High", rr.RiskLevel)
}

func TestCalculateRiskRewardBalanced(t *testing.T) {
	rr := CalculateRiskReward(60, 3, 3)
	assert.Equal(t, "Moderate", rr.RiskLevel)
	assert.Equal(t, "Moderate", rr.RewardLevel)
	assert.Contains(t, rr.Assessment, "60% match with a 40% chance")
}

func TestExperienceYears(t *testing.T) {
	assert.Equal(t, 3, ExperienceYears("3 years"))
	assert.Equal(t, 10, ExperienceYears("over 10 years of backend work"))
	assert.Equal(t, 1, ExperienceYears("10 months"), "月份不计为年限")
	assert.Equal(t, 1, ExperienceYears("Not Found"))
	assert.Equal(t, 1, ExperienceYears(""))
}

func TestCountMatchedSkills(t *testing.T) {
	assert.Equal(t, 2, countMatchedSkills([]string{"Python", "SQL"}))
	assert.Equal(t, 0, countMatchedSkills([]string{"Not Found"}))
	assert.Equal(t, 0, countMatchedSkills(nil))
}
