package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ResumeSubmission 简历提交记录表
// 每次上传产生一行，记录文件来源和处理进度
type ResumeSubmission struct {
	SubmissionUUID      string    `gorm:"type:char(36);primaryKey"`
	SubmissionTimestamp time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	SourceChannel       string    `gorm:"type:varchar(100)"`
	OriginalFilename    string    `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string    `gorm:"type:varchar(1024)"`
	RawFileMD5          string    `gorm:"type:char(32);index:idx_rs_raw_file_md5"`
	RawTextMD5          string    `gorm:"type:char(32);index:idx_rs_raw_text_md5"`
	ProcessingStatus    string    `gorm:"type:varchar(50);default:'UPLOADED';index:idx_rs_processing_status"`
	ExtractorVersion    string    `gorm:"type:varchar(50)"`
	ErrorMessage        string    `gorm:"type:text"`
	CreatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// ResumeRecord 字段提取结果表
// 与提交记录一一对应，列表字段以JSON列存储
type ResumeRecord struct {
	SubmissionUUID string         `gorm:"type:char(36);primaryKey"`
	Name           string         `gorm:"type:varchar(255)"`
	Email          string         `gorm:"type:varchar(255);index:idx_rr_email"`
	Phone          string         `gorm:"type:varchar(64)"`
	YearOfPassing  string         `gorm:"type:varchar(255)"`
	Skills         datatypes.JSON `gorm:"type:json"`
	Experience     string         `gorm:"type:varchar(255)"`
	Certifications datatypes.JSON `gorm:"type:json"`
	PQScore        float64        `gorm:"type:decimal(6,2)"`
	PQBreakdown    datatypes.JSON `gorm:"type:json"`
	RiskLevel      string         `gorm:"type:varchar(20)"`
	RewardLevel    string         `gorm:"type:varchar(20)"`
	TextLength     int            `gorm:"type:int"`
	CreatedAt      time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt      time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Submission *ResumeSubmission `gorm:"foreignKey:SubmissionUUID;references:SubmissionUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ResumeRecord) TableName() string {
	return "resume_records"
}

// MapToJSON 把map转换为datatypes.JSON
func MapToJSON(m map[string]interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
