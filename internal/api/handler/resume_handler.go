package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"
	"gorm.io/gorm"

	"career-agent-go/internal/config"
	"career-agent-go/internal/constants"
	"career-agent-go/internal/logger"
	"career-agent-go/internal/processor"
	"career-agent-go/internal/storage"
	"career-agent-go/internal/storage/models"
	"career-agent-go/pkg/utils"
)

// ErrRecordNotReady 提取结果尚未生成或提交不存在
var ErrRecordNotReady = errors.New("提取结果不存在")

// ResumeHandler 简历上传与提取结果查询的业务入口
type ResumeHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	service *processor.FieldExtractionService
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(cfg *config.Config, st *storage.Storage, service *processor.FieldExtractionService) *ResumeHandler {
	return &ResumeHandler{
		cfg:     cfg,
		storage: st,
		service: service,
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
}

// HandleResumeUpload 处理简历上传
// 文件MD5重复的上传直接跳过，不产生提交记录
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, reader io.Reader, filename, sourceChannel string) (*ResumeUploadResponse, error) {
	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}
	if len(fileBytes) == 0 {
		return nil, fmt.Errorf("上传文件为空")
	}
	fileMD5Hex := utils.CalculateMD5(fileBytes)

	// 原子地检查并登记文件MD5
	exists, err := h.storage.Redis.CheckAndAddRawFileMD5(ctx, fileMD5Hex)
	if err != nil {
		logger.Error().Err(err).Str("md5", fileMD5Hex).Msg("查询Redis文件MD5失败")
		return nil, fmt.Errorf("检查文件MD5重复性失败: %w", err)
	}
	if exists {
		logger.Info().Str("md5", fileMD5Hex).Str("filename", filename).Msg("检测到重复的文件MD5，跳过处理")
		return &ResumeUploadResponse{Status: "DUPLICATE_FILE_SKIPPED"}, nil
	}

	uuidV7, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	submissionUUID := uuidV7.String()

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".pdf"
	}

	objectKey, _, err := h.storage.MinIO.UploadResumeFileStreaming(ctx, submissionUUID, ext,
		bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		// 上传失败时回滚MD5登记，避免把失败的上传当作重复
		if remErr := h.storage.Redis.RemoveRawFileMD5(ctx, fileMD5Hex); remErr != nil {
			logger.Warn().Err(remErr).Str("md5", fileMD5Hex).Msg("回滚文件MD5登记失败")
		}
		return nil, fmt.Errorf("上传简历到MinIO失败: %w", err)
	}

	now := time.Now()
	submission := &models.ResumeSubmission{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		SourceChannel:       sourceChannel,
		OriginalFilename:    filename,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          fileMD5Hex,
		ProcessingStatus:    constants.StatusUploaded,
	}
	if err := h.storage.MySQL.CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("写入提交记录失败: %w", err)
	}

	message := &storage.ResumeUploadedMessage{
		SubmissionUUID:      submissionUUID,
		OriginalFilePathOSS: objectKey,
		OriginalFilename:    filename,
		RawFileMD5:          fileMD5Hex,
		SourceChannel:       sourceChannel,
		SubmittedAt:         now,
	}
	if err := h.storage.RabbitMQ.PublishResumeUploaded(ctx, message); err != nil {
		if markErr := h.storage.MySQL.MarkSubmissionFailed(ctx, submissionUUID, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Str("submission_uuid", submissionUUID).Msg("标记提交失败状态时出错")
		}
		return nil, fmt.Errorf("发布上传事件失败: %w", err)
	}

	if err := h.storage.MySQL.UpdateSubmissionStatus(ctx, submissionUUID, constants.StatusQueuedForExtraction); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("更新提交状态失败")
	}

	logger.Info().
		Str("submission_uuid", submissionUUID).
		Str("object_key", objectKey).
		Msg("简历上传完成，已发布提取事件")

	return &ResumeUploadResponse{
		SubmissionUUID: submissionUUID,
		Status:         "SUBMITTED_FOR_PROCESSING",
	}, nil
}

// StartUploadConsumer 启动上传事件消费者
// 返回的通道用于停止所有worker
func (h *ResumeHandler) StartUploadConsumer() ([]<-chan struct{}, error) {
	workers := h.cfg.RabbitMQ.ConsumerWorkers
	stops := make([]<-chan struct{}, 0, workers)

	for i := 0; i < workers; i++ {
		stopCh, err := h.storage.RabbitMQ.StartConsumer(
			h.cfg.RabbitMQ.RawResumeQueue,
			h.cfg.RabbitMQ.PrefetchCount,
			h.service.HandleUploadedMessage,
		)
		if err != nil {
			return stops, fmt.Errorf("启动第%d个消费者失败: %w", i+1, err)
		}
		stops = append(stops, stopCh)
	}

	logger.Info().
		Str("queue", h.cfg.RabbitMQ.RawResumeQueue).
		Int("workers", workers).
		Msg("简历上传消费者就绪")
	return stops, nil
}

// HandleSyncExtract 同步提取：不入库，直接返回七字段结果
func (h *ResumeHandler) HandleSyncExtract(ctx context.Context, reader io.Reader, filename string) (map[string]interface{}, error) {
	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}

	record, _, err := h.service.ExtractFields(ctx, fileBytes, filename)
	if err != nil {
		return nil, err
	}
	return record.Fields(), nil
}

// HandleSyncExtractText 对纯文本直接执行字段提取
func (h *ResumeHandler) HandleSyncExtractText(text string) (map[string]interface{}, error) {
	record, err := h.service.ExtractFieldsFromText(text)
	if err != nil {
		return nil, err
	}
	return record.Fields(), nil
}

// HandleGetRecord 查询提取结果，优先读缓存
func (h *ResumeHandler) HandleGetRecord(ctx context.Context, submissionUUID string) (*models.ResumeRecord, error) {
	if cached, err := h.storage.Redis.GetCachedResumeRecord(ctx, submissionUUID); err == nil {
		return cached, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("读取提取记录缓存失败")
	}

	record, err := h.storage.MySQL.GetResumeRecordByUUID(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotReady
		}
		return nil, fmt.Errorf("查询提取记录失败: %w", err)
	}

	// 回填缓存
	if err := h.storage.Redis.CacheResumeRecord(ctx, submissionUUID, record); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("回填提取记录缓存失败")
	}
	return record, nil
}

// HandleGetSubmission 查询提交记录状态
func (h *ResumeHandler) HandleGetSubmission(ctx context.Context, submissionUUID string) (*models.ResumeSubmission, error) {
	submission, err := h.storage.MySQL.GetSubmissionByUUID(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotReady
		}
		return nil, fmt.Errorf("查询提交记录失败: %w", err)
	}
	return submission, nil
}
