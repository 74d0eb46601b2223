package constants

import "time"

const (
	// NotFoundSentinel 外部边界上表示"未命中"的字面值
	// 所有提取字段在未命中时返回该字面值，而不是空值或缺失键
	NotFoundSentinel = "Not Found"

	// DefaultExtractorVersion 当前字段提取器版本，写入提取记录
	DefaultExtractorVersion = "1.0"

	// Redis相关常量
	RawFileMD5SetKey    = "resumes:file_md5s" // 原始文件MD5去重集合
	ParsedTextMD5SetKey = "resumes:text_md5s" // 解析文本MD5去重集合
	RecordCachePrefix   = "record:"           // 提取记录缓存前缀
	RecordCacheDuration = 24 * time.Hour      // 提取记录缓存时长
)

// 简历处理状态，写入resume_submissions.processing_status
const (
	StatusUploaded                = "UPLOADED"
	StatusQueuedForExtraction     = "QUEUED_FOR_EXTRACTION"
	StatusExtracting              = "EXTRACTING"
	StatusCompleted               = "COMPLETED"
	StatusExtractionFailed        = "EXTRACTION_FAILED"
	StatusFileDuplicateSkipped    = "FILE_DUPLICATE_SKIPPED"
	StatusContentDuplicateSkipped = "CONTENT_DUPLICATE_SKIPPED"
)
