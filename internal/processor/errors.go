package processor

import (
	"errors"
	"fmt"
)

// 基础错误类型
var (
	ErrResumeDownloadFailed = errors.New("下载简历失败")
	ErrParseTextFailed      = errors.New("提取简历文本失败")
	ErrFieldExtractFailed   = errors.New("字段提取失败")
	ErrStoreRecordFailed    = errors.New("保存提取记录失败")
	ErrUpdateStatusFailed   = errors.New("更新简历状态失败")
	ErrDuplicateContent     = errors.New("检测到重复内容")
)

// ProcessError 带提交UUID和操作上下文的处理错误
type ProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 支持errors.Is按基础错误比较
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func NewDownloadError(uuid, detail string) error {
	return &ProcessError{SubmissionUUID: uuid, Op: "download", BaseErr: ErrResumeDownloadFailed, Detail: detail}
}

func NewParseError(uuid, detail string) error {
	return &ProcessError{SubmissionUUID: uuid, Op: "parse", BaseErr: ErrParseTextFailed, Detail: detail}
}

func NewExtractError(uuid, detail string) error {
	return &ProcessError{SubmissionUUID: uuid, Op: "extract", BaseErr: ErrFieldExtractFailed, Detail: detail}
}

func NewStoreError(uuid, detail string) error {
	return &ProcessError{SubmissionUUID: uuid, Op: "store", BaseErr: ErrStoreRecordFailed, Detail: detail}
}

func NewUpdateError(uuid, detail string) error {
	return &ProcessError{SubmissionUUID: uuid, Op: "update", BaseErr: ErrUpdateStatusFailed, Detail: detail}
}
