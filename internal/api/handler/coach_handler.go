package handler

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"career-agent-go/internal/coach"
)

// ErrAIUnavailable 未配置模型服务时AI相关接口返回此错误
var ErrAIUnavailable = fmt.Errorf("AI模型服务未配置")

// CoachHandler 职业教练相关操作入口
type CoachHandler struct {
	careerCoach *coach.CareerCoach
}

// NewCoachHandler 创建教练处理器
func NewCoachHandler(careerCoach *coach.CareerCoach) *CoachHandler {
	return &CoachHandler{careerCoach: careerCoach}
}

// HandleDailyMotivation 生成每日激励
func (h *CoachHandler) HandleDailyMotivation(ctx context.Context, profile *coach.UserProfile) (*coach.Motivation, error) {
	if h.careerCoach == nil {
		return nil, ErrAIUnavailable
	}
	return h.careerCoach.DailyMotivation(ctx, profile)
}

// HandleWeeklyChallenge 生成每周挑战
func (h *CoachHandler) HandleWeeklyChallenge(ctx context.Context, profile *coach.UserProfile) (*coach.WeeklyChallenge, error) {
	if h.careerCoach == nil {
		return nil, ErrAIUnavailable
	}
	return h.careerCoach.GenerateWeeklyChallenge(ctx, profile)
}

// ProgressFeedbackRequest 进展反馈请求
type ProgressFeedbackRequest struct {
	Profile  coach.UserProfile  `json:"profile"`
	Progress coach.ProgressData `json:"progress"`
}

// HandleProgressFeedback 生成阶段性进展反馈
func (h *CoachHandler) HandleProgressFeedback(ctx context.Context, req *ProgressFeedbackRequest) (*coach.ProgressFeedback, error) {
	if req == nil {
		return nil, fmt.Errorf("请求不能为空")
	}
	if h.careerCoach == nil {
		return nil, ErrAIUnavailable
	}
	return h.careerCoach.GenerateProgressFeedback(ctx, &req.Profile, &req.Progress)
}

// ChatRequest 教练对话请求
// SessionID为空时开启新会话
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse 教练对话响应
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// HandleChat 带会话记忆的教练对话
func (h *CoachHandler) HandleChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("请求不能为空")
	}
	if h.careerCoach == nil {
		return nil, ErrAIUnavailable
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply, err := h.careerCoach.Chat(ctx, sessionID, req.Message)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		SessionID: sessionID,
		Reply:     reply,
	}, nil
}

// HandleEndSession 结束会话并清除历史
func (h *CoachHandler) HandleEndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("会话ID不能为空")
	}
	if h.careerCoach == nil {
		return ErrAIUnavailable
	}
	return h.careerCoach.EndSession(ctx, sessionID)
}
