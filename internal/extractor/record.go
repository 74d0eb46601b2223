package extractor

// 对外边界上的七个固定字段键，与下游展示层约定一致
const (
	FieldName           = "Name"
	FieldEmail          = "Email"
	FieldPhone          = "Phone"
	FieldYearOfPassing  = "Year of Passing (YOP)"
	FieldSkills         = "Skills"
	FieldExperience     = "Experience"
	FieldCertifications = "Certifications"
)

// Record 一次提取调用的结果
// 七个字段总是全部被填充，未命中以哨兵字面值表示，绝不缺键
// 记录由调用方持有，本组件不做任何持久化
type Record struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	YearOfPassing  string   `json:"year_of_passing"`
	Skills         []string `json:"skills"`
	Experience     string   `json:"experience"`
	Certifications []string `json:"certifications"`
}

// Fields 以固定的七键映射暴露记录，键名即外部接口约定的字段名
func (r *Record) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldName:           r.Name,
		FieldEmail:          r.Email,
		FieldPhone:          r.Phone,
		FieldYearOfPassing:  r.YearOfPassing,
		FieldSkills:         r.Skills,
		FieldExperience:     r.Experience,
		FieldCertifications: r.Certifications,
	}
}
