package processor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 成长性指标参考表
var (
	advancedSkillKeywords = []string{"Python", "Machine Learning", "AI", "Cloud Computing", "Big Data"}

	adaptabilityKeywords = []string{
		"cloud", "big data", "multi-disciplinary", "collaboration", "flexibility",
		"cross-functional", "open source", "hackathon", "teamwork",
	}

	projectKeywords = []string{"side project", "volunteer", "freelance", "hackathon", "open source", "mentoring"}

	experienceMentionRegex = regexp.MustCompile(`(?i)\b\d+\s+(years?|months?)\b|\b(one|two|three|four|five|six|seven|eight|nine|ten)\s+(years?|months?)\b`)
	certMentionRegex       = regexp.MustCompile(`(?i)(AWS|Google Cloud|certified|certificate|certification|Machine Learning Specialization|PMP|Scrum Master|Azure)`)
	yearsNumberRegex       = regexp.MustCompile(`\b\d+\s+years?\b`)
)

// PQResult 潜力商数评分明细
type PQResult struct {
	Score                 float64 `json:"pq_score"`
	SkillsMatched         int     `json:"skills_matched"`
	Certifications        int     `json:"certifications"`
	LearningSpeed         int     `json:"learning_speed"`
	Adaptability          int     `json:"adaptability"`
	PassionForImprovement int     `json:"passion_for_improvement"`
	YearsOfExperience     int     `json:"years_of_experience"`
}

// Breakdown 以map形式返回明细，用于JSON列存储
func (r *PQResult) Breakdown() map[string]interface{} {
	return map[string]interface{}{
		"pq_score":                r.Score,
		"skills_matched":          r.SkillsMatched,
		"certifications":          r.Certifications,
		"learning_speed":          r.LearningSpeed,
		"adaptability":            r.Adaptability,
		"passion_for_improvement": r.PassionForImprovement,
		"years_of_experience":     r.YearsOfExperience,
	}
}

// RiskReward 候选人风险收益评估
type RiskReward struct {
	Assessment      string   `json:"assessment"`
	RiskLevel       string   `json:"risk_level"`
	RewardLevel     string   `json:"reward_level"`
	Recommendations []string `json:"recommendations"`
}

// countKeywordHits 统计简历文本中命中的关键词数，大小写不敏感
func countKeywordHits(resumeText string, keywords []string) int {
	lower := strings.ToLower(resumeText)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits++
		}
	}
	return hits
}

// CalculatePQ 基于技能、经验和成长性指标计算PQ分数
// 经验提及次数从文本中独立统计，不使用调用方传入的年限
func CalculatePQ(resumeText string, skillsMatched int) *PQResult {
	learningSpeed := countKeywordHits(resumeText, advancedSkillKeywords)
	adaptability := countKeywordHits(resumeText, adaptabilityKeywords)
	passion := countKeywordHits(resumeText, projectKeywords)
	experienceMentions := len(experienceMentionRegex.FindAllString(resumeText, -1))
	certCount := len(certMentionRegex.FindAllString(resumeText, -1))

	rawScore := float64(skillsMatched*5 + experienceMentions*5 + learningSpeed*4 +
		adaptability*2 + passion*3 + certCount*2)

	return &PQResult{
		Score:                 rawScore,
		SkillsMatched:         skillsMatched,
		Certifications:        certCount,
		LearningSpeed:         learningSpeed,
		Adaptability:          adaptability,
		PassionForImprovement: passion,
		YearsOfExperience:     experienceMentions,
	}
}

// CalculateRiskReward 根据PQ分数判定候选人的风险收益档位
func CalculateRiskReward(pqScore float64, skillsMatched, yearsOfExperience int) *RiskReward {
	switch {
	case pqScore >= 75 && skillsMatched >= 4:
		return &RiskReward{
			Assessment:  "Safe Candidate: Well-matched, but with low growth potential.",
			RiskLevel:   "Low",
			RewardLevel: "Moderate",
			Recommendations: []string{
				"Focus on leadership and mentoring opportunities",
				"Explore advanced certifications",
				"Consider cross-functional projects",
			},
		}
	case pqScore < 50 || yearsOfExperience < 2:
		return &RiskReward{
			Assessment: fmt.Sprintf("High-Risk, High-Reward: %.0f%% match now but has the potential to exceed expectations with training.",
				100-pqScore),
			RiskLevel:   "High",
			RewardLevel: "High",
			Recommendations: []string{
				"Invest in intensive training programs",
				"Pair with experienced mentors",
				"Set clear performance milestones",
			},
		}
	default:
		return &RiskReward{
			Assessment: fmt.Sprintf("Balanced Candidate: %.0f%% match with a %.0f%% chance of exceeding expectations within a year.",
				pqScore, 100-pqScore),
			RiskLevel:   "Moderate",
			RewardLevel: "Moderate",
			Recommendations: []string{
				"Focus on skill gap training",
				"Take on challenging projects",
				"Build domain expertise",
			},
		}
	}
}

// ExperienceYears 从提取的经验字段解析年限，未命中时默认1年
func ExperienceYears(experienceField string) int {
	match := yearsNumberRegex.FindString(experienceField)
	if match == "" {
		return 1
	}
	fields := strings.Fields(match)
	years, err := strconv.Atoi(fields[0])
	if err != nil {
		return 1
	}
	return years
}
