package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"career-agent-go/internal/config"
	"career-agent-go/internal/constants"
	"career-agent-go/internal/extractor"
	"career-agent-go/internal/parser"
	"career-agent-go/internal/storage"
	"career-agent-go/internal/storage/models"
	"career-agent-go/internal/tracing"
	"career-agent-go/pkg/utils"
)

var tracer = otel.Tracer("career-agent-go/processor")

// 组件未初始化错误
var (
	ErrStorageNotInit   = errors.New("存储未初始化")
	ErrExtractorNotInit = errors.New("提取器未初始化")
)

// PDFTextExtractor PDF文本提取接口
type PDFTextExtractor interface {
	ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)
}

// FieldExtractor 字段提取接口
type FieldExtractor interface {
	Extract(text string) *extractor.Record
}

// Components 聚合字段提取流水线的功能组件
type Components struct {
	PDFExtractor   PDFTextExtractor
	FieldExtractor FieldExtractor
	Storage        *storage.Storage
}

// FieldExtractionService 简历字段提取服务
// 消费上传事件，完成下载、解析、字段提取、评分和持久化
type FieldExtractionService struct {
	components Components
	cfg        *config.Config
	logger     *zerolog.Logger
}

// NewFieldExtractionService 按配置组装字段提取服务
func NewFieldExtractionService(ctx context.Context, cfg *config.Config, st *storage.Storage, logger *zerolog.Logger) (*FieldExtractionService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx)
	if err != nil {
		return nil, fmt.Errorf("创建PDF提取器失败: %w", err)
	}

	var extractorOpts []extractor.Option
	if len(cfg.Extractor.Skills) > 0 {
		extractorOpts = append(extractorOpts, extractor.WithSkills(cfg.Extractor.Skills))
	}
	if len(cfg.Extractor.Certifications) > 0 {
		extractorOpts = append(extractorOpts, extractor.WithCertifications(cfg.Extractor.Certifications))
	}

	return &FieldExtractionService{
		components: Components{
			PDFExtractor:   pdfExtractor,
			FieldExtractor: extractor.New(extractorOpts...),
			Storage:        st,
		},
		cfg:    cfg,
		logger: logger,
	}, nil
}

// NewFieldExtractionServiceWithComponents 用现成组件构造服务，测试时替换依赖用
func NewFieldExtractionServiceWithComponents(cfg *config.Config, comp Components, logger *zerolog.Logger) *FieldExtractionService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FieldExtractionService{
		components: comp,
		cfg:        cfg,
		logger:     logger,
	}
}

// ExtractFields 对PDF字节流执行文本解析和字段提取
// 同步提取接口也走这条路径，保证和消费端行为一致
func (s *FieldExtractionService) ExtractFields(ctx context.Context, fileBytes []byte, uri string) (*extractor.Record, string, error) {
	ctx, span := tracer.Start(ctx, "ExtractFields")
	defer span.End()

	if s.components.PDFExtractor == nil || s.components.FieldExtractor == nil {
		span.SetStatus(codes.Error, "提取器未初始化")
		return nil, "", ErrExtractorNotInit
	}

	text, _, err := s.components.PDFExtractor.ExtractFromReader(ctx, bytes.NewReader(fileBytes), uri)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, "", fmt.Errorf("提取文本失败: %w", err)
	}
	span.SetAttributes(attribute.Int("text_length", len(text)))

	record := s.components.FieldExtractor.Extract(text)
	return record, text, nil
}

// ExtractFieldsFromText 跳过PDF解析，直接在纯文本上执行字段提取
func (s *FieldExtractionService) ExtractFieldsFromText(text string) (*extractor.Record, error) {
	if s.components.FieldExtractor == nil {
		return nil, ErrExtractorNotInit
	}
	return s.components.FieldExtractor.Extract(text), nil
}

// ProcessUploadedResume 处理一条简历上传事件
// 重复内容按正常流程提交并跳过后续处理
func (s *FieldExtractionService) ProcessUploadedResume(ctx context.Context, message *storage.ResumeUploadedMessage) error {
	ctx, span := tracer.Start(ctx, "ProcessUploadedResume",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	span.SetAttributes(
		attribute.String("submission_uuid", message.SubmissionUUID),
		attribute.String("source_channel", message.SourceChannel),
	)

	log := s.logger.With().Str("submission_uuid", message.SubmissionUUID).Logger()
	log.Debug().Msg("开始处理上传的简历")

	if s.components.Storage == nil {
		span.RecordError(ErrStorageNotInit)
		span.SetStatus(codes.Error, "存储未初始化")
		return ErrStorageNotInit
	}

	st := s.components.Storage
	if err := st.MySQL.UpdateSubmissionStatus(ctx, message.SubmissionUUID, constants.StatusExtracting); err != nil {
		log.Error().Err(err).Msg("更新简历状态为EXTRACTING失败")
		return NewUpdateError(message.SubmissionUUID, err.Error())
	}

	// 下载原始文件
	fileBytes, err := st.MinIO.GetResumeFile(ctx, message.OriginalFilePathOSS)
	if err != nil {
		log.Error().Err(err).Msg("从MinIO下载简历失败")
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		s.markFailed(ctx, message.SubmissionUUID, err)
		return NewDownloadError(message.SubmissionUUID, err.Error())
	}
	span.SetAttributes(attribute.Int("file_size_bytes", len(fileBytes)))

	// 解析文本并提取字段
	record, text, err := s.ExtractFields(ctx, fileBytes, message.OriginalFilePathOSS)
	if err != nil {
		log.Error().Err(err).Msg("解析简历失败")
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		s.markFailed(ctx, message.SubmissionUUID, err)
		return NewParseError(message.SubmissionUUID, err.Error())
	}

	// 文本级去重
	textMD5Hex := utils.CalculateMD5([]byte(text))
	textExists, err := st.Redis.CheckAndAddParsedTextMD5(ctx, textMD5Hex)
	if err != nil {
		log.Warn().Err(err).Msg("Redis检查文本MD5失败，继续处理，文本去重可能失效")
	} else if textExists {
		log.Info().Str("md5", textMD5Hex).Msg("检测到重复的文本内容，跳过提取")
		span.SetAttributes(attribute.Bool("duplicate_content", true))
		if err := st.MySQL.UpdateSubmissionStatus(ctx, message.SubmissionUUID, constants.StatusContentDuplicateSkipped); err != nil {
			return NewUpdateError(message.SubmissionUUID, err.Error())
		}
		return nil
	}

	// PQ评分
	skillsMatched := countMatchedSkills(record.Skills)
	pq := CalculatePQ(text, skillsMatched)
	riskReward := CalculateRiskReward(pq.Score, skillsMatched, ExperienceYears(record.Experience))

	dbRecord, err := buildDBRecord(message.SubmissionUUID, record, pq, riskReward, len(text))
	if err != nil {
		span.RecordError(err)
		s.markFailed(ctx, message.SubmissionUUID, err)
		return NewStoreError(message.SubmissionUUID, err.Error())
	}

	if err := st.MySQL.SaveResumeRecord(ctx, dbRecord); err != nil {
		log.Error().Err(err).Msg("保存提取记录失败")
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		s.markFailed(ctx, message.SubmissionUUID, err)
		return NewStoreError(message.SubmissionUUID, err.Error())
	}

	updates := map[string]interface{}{
		"raw_text_md5":      textMD5Hex,
		"processing_status": constants.StatusCompleted,
		"extractor_version": constants.DefaultExtractorVersion,
	}
	if err := st.MySQL.DB().WithContext(ctx).Model(&models.ResumeSubmission{}).
		Where("submission_uuid = ?", message.SubmissionUUID).
		Updates(updates).Error; err != nil {
		log.Error().Err(err).Msg("更新提交记录失败")
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return NewUpdateError(message.SubmissionUUID, err.Error())
	}

	// 缓存为尽力而为，失败不影响主流程
	if err := st.Redis.CacheResumeRecord(ctx, message.SubmissionUUID, dbRecord); err != nil {
		log.Warn().Err(err).Msg("缓存提取记录失败")
	}

	span.SetStatus(codes.Ok, "处理成功")
	log.Info().Float64("pq_score", pq.Score).Msg("简历字段提取完成")
	return nil
}

// HandleUploadedMessage 适配RabbitMQ消费者回调
// 处理失败的消息已标记失败状态，确认消费避免重复入队
func (s *FieldExtractionService) HandleUploadedMessage(data []byte) bool {
	var message storage.ResumeUploadedMessage
	if err := json.Unmarshal(data, &message); err != nil {
		s.logger.Error().Err(err).Msg("解析上传事件消息失败，丢弃")
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.ProcessUploadedResume(ctx, &message); err != nil {
		s.logger.Error().Err(err).Str("submission_uuid", message.SubmissionUUID).Msg("处理上传事件失败")
	}
	return true
}

// markFailed 把提交记录标记为失败，记录错误信息
func (s *FieldExtractionService) markFailed(ctx context.Context, submissionUUID string, cause error) {
	if err := s.components.Storage.MySQL.MarkSubmissionFailed(ctx, submissionUUID, cause.Error()); err != nil {
		s.logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("标记提交失败状态时出错")
	}
}

// countMatchedSkills 统计命中的技能数，哨兵值不计入
func countMatchedSkills(skills []string) int {
	count := 0
	for _, skill := range skills {
		if skill != constants.NotFoundSentinel {
			count++
		}
	}
	return count
}

// buildDBRecord 把提取结果和评分组装为数据库行
func buildDBRecord(submissionUUID string, record *extractor.Record, pq *PQResult, riskReward *RiskReward, textLength int) (*models.ResumeRecord, error) {
	breakdown, err := models.MapToJSON(pq.Breakdown())
	if err != nil {
		return nil, fmt.Errorf("序列化PQ明细失败: %w", err)
	}

	return &models.ResumeRecord{
		SubmissionUUID: submissionUUID,
		Name:           record.Name,
		Email:          record.Email,
		Phone:          record.Phone,
		YearOfPassing:  record.YearOfPassing,
		Skills:         utils.ConvertArrayToJSON(record.Skills),
		Experience:     record.Experience,
		Certifications: utils.ConvertArrayToJSON(record.Certifications),
		PQScore:        pq.Score,
		PQBreakdown:    breakdown,
		RiskLevel:      riskReward.RiskLevel,
		RewardLevel:    riskReward.RewardLevel,
		TextLength:     textLength,
	}, nil
}
