package storage

import "time"

// ResumeUploadedMessage 上传完成事件，发布到resume.uploaded路由
// 消费端据此从MinIO取回原始文件并执行字段提取
type ResumeUploadedMessage struct {
	SubmissionUUID      string    `json:"submission_uuid"`
	OriginalFilePathOSS string    `json:"original_file_path_oss"`
	OriginalFilename    string    `json:"original_filename"`
	RawFileMD5          string    `json:"raw_file_md5"`
	SourceChannel       string    `json:"source_channel,omitempty"`
	SubmittedAt         time.Time `json:"submitted_at"`
}
