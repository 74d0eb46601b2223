package handler

import (
	"context"
	"fmt"

	"career-agent-go/internal/coach"
)

// GameHandler 面试游戏相关操作入口
type GameHandler struct {
	game *coach.InterviewGame
}

// NewGameHandler 创建游戏处理器
func NewGameHandler(game *coach.InterviewGame) *GameHandler {
	return &GameHandler{game: game}
}

// GameRequest 题目生成请求
type GameRequest struct {
	JobRole      string `json:"job_role"`
	Difficulty   string `json:"difficulty,omitempty"`
	NumQuestions int    `json:"num_questions,omitempty"`
}

// HandleQuiz 生成选择题
func (h *GameHandler) HandleQuiz(ctx context.Context, req *GameRequest) ([]coach.QuizQuestion, error) {
	if req == nil {
		return nil, fmt.Errorf("请求不能为空")
	}
	if h.game == nil {
		return nil, ErrAIUnavailable
	}
	return h.game.GenerateQuizQuestions(ctx, req.JobRole, req.Difficulty)
}

// QuizEvaluateRequest 选择题评估请求
type QuizEvaluateRequest struct {
	Question   coach.QuizQuestion `json:"question"`
	UserAnswer string             `json:"user_answer"`
}

// HandleQuizEvaluate 本地评估选择题答案
func (h *GameHandler) HandleQuizEvaluate(req *QuizEvaluateRequest) (*coach.QuizEvaluation, error) {
	if req == nil {
		return nil, fmt.Errorf("请求不能为空")
	}
	if h.game == nil {
		return nil, ErrAIUnavailable
	}
	return h.game.EvaluateQuizAnswer(&req.Question, req.UserAnswer), nil
}

// HandleRapidFire 生成快问快答题目
func (h *GameHandler) HandleRapidFire(ctx context.Context, req *GameRequest) ([]coach.RapidFireQuestion, error) {
	if req == nil {
		return nil, fmt.Errorf("请求不能为空")
	}
	if h.game == nil {
		return nil, ErrAIUnavailable
	}
	return h.game.GenerateRapidFire(ctx, req.JobRole, req.Difficulty, req.NumQuestions)
}

// RapidFireEvaluateRequest 快问快答评估请求
type RapidFireEvaluateRequest struct {
	Question   coach.RapidFireQuestion `json:"question"`
	UserAnswer string                  `json:"user_answer"`
}

// RapidFireEvaluateResponse 快问快答评估响应
type RapidFireEvaluateResponse struct {
	Score  float64 `json:"score"`
	Answer string  `json:"answer"`
}

// HandleRapidFireEvaluate 按关键词命中率评估快问快答
func (h *GameHandler) HandleRapidFireEvaluate(req *RapidFireEvaluateRequest) (*RapidFireEvaluateResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("请求不能为空")
	}
	if h.game == nil {
		return nil, ErrAIUnavailable
	}
	score := h.game.EvaluateRapidFireAnswer(&req.Question, req.UserAnswer)
	return &RapidFireEvaluateResponse{
		Score:  score,
		Answer: req.Question.Answer,
	}, nil
}

// HandleScenario 生成场景挑战
func (h *GameHandler) HandleScenario(ctx context.Context, req *GameRequest) (*coach.ScenarioChallenge, error) {
	if req == nil {
		return nil, fmt.Errorf("请求不能为空")
	}
	if h.game == nil {
		return nil, ErrAIUnavailable
	}
	return h.game.GenerateScenarioChallenge(ctx, req.JobRole, req.Difficulty)
}
