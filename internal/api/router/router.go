package router

import (
	"context"
	"errors"

	"career-agent-go/internal/api/handler"
	"career-agent-go/internal/coach"
	"career-agent-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/hertz-contrib/keyauth"
)

// Handlers 路由所需的处理器集合
type Handlers struct {
	Resume   *handler.ResumeHandler
	Analysis *handler.AnalysisHandler
	Coach    *handler.CoachHandler
	Game     *handler.GameHandler
}

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, hs *Handlers) {
	api := h.Group("/api/v1")

	// 配置了 api_key 时启用 Bearer 鉴权，健康检查除外
	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithFilter(func(c context.Context, ctx *app.RequestContext) bool {
				return string(ctx.Path()) == "/api/v1/health"
			}),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
		))
	}

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	registerResumeRoutes(api, hs.Resume)
	registerAnalysisRoutes(api, hs.Analysis)
	registerCoachRoutes(api, hs.Coach)
	registerGameRoutes(api, hs.Game)
}

func registerResumeRoutes(api *route.RouterGroup, resumeHandler *handler.ResumeHandler) {
	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		sourceChannel := ctx.PostForm("source_channel")
		if sourceChannel == "" {
			sourceChannel = "web_upload"
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := resumeHandler.HandleResumeUpload(c, file, fileHeader.Filename, sourceChannel)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 同步提取：不落库不入队，直接返回七字段
	// 接受multipart文件，或JSON体中的纯文本
	api.POST("/resume/extract", func(c context.Context, ctx *app.RequestContext) {
		if fileHeader, err := ctx.FormFile("file"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
				return
			}
			defer file.Close()

			fields, err := resumeHandler.HandleSyncExtract(c, file, fileHeader.Filename)
			if err != nil {
				ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
				return
			}
			ctx.JSON(consts.StatusOK, fields)
			return
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "需要上传文件或提供text字段"})
			return
		}
		fields, err := resumeHandler.HandleSyncExtractText(req.Text)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, fields)
	})

	api.GET("/resume/:uuid/record", func(c context.Context, ctx *app.RequestContext) {
		record, err := resumeHandler.HandleGetRecord(c, ctx.Param("uuid"))
		if err != nil {
			if errors.Is(err, handler.ErrRecordNotReady) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, record)
	})

	api.GET("/resume/:uuid", func(c context.Context, ctx *app.RequestContext) {
		submission, err := resumeHandler.HandleGetSubmission(c, ctx.Param("uuid"))
		if err != nil {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "提交记录不存在"})
			return
		}
		ctx.JSON(consts.StatusOK, submission)
	})
}

func registerAnalysisRoutes(api *route.RouterGroup, analysisHandler *handler.AnalysisHandler) {
	api.POST("/analysis/pq", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := analysisHandler.HandlePQAnalysis(c, file, fileHeader.Filename)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.POST("/analysis/ats", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ATSRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		result, err := analysisHandler.HandleATSAnalysis(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})
}

func registerCoachRoutes(api *route.RouterGroup, coachHandler *handler.CoachHandler) {
	api.POST("/coach/motivation", func(c context.Context, ctx *app.RequestContext) {
		var profile coach.UserProfile
		if err := ctx.BindJSON(&profile); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		result, err := coachHandler.HandleDailyMotivation(c, &profile)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	api.POST("/coach/challenge", func(c context.Context, ctx *app.RequestContext) {
		var profile coach.UserProfile
		if err := ctx.BindJSON(&profile); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		result, err := coachHandler.HandleWeeklyChallenge(c, &profile)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	api.POST("/coach/feedback", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ProgressFeedbackRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		result, err := coachHandler.HandleProgressFeedback(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	api.POST("/coach/chat", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ChatRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		resp, err := coachHandler.HandleChat(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.DELETE("/coach/chat/:session_id", func(c context.Context, ctx *app.RequestContext) {
		if err := coachHandler.HandleEndSession(c, ctx.Param("session_id")); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"status": "session_closed"})
	})
}

func registerGameRoutes(api *route.RouterGroup, gameHandler *handler.GameHandler) {
	api.POST("/game/quiz", func(c context.Context, ctx *app.RequestContext) {
		var req handler.GameRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		questions, err := gameHandler.HandleQuiz(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"questions": questions})
	})

	api.POST("/game/quiz/evaluate", func(c context.Context, ctx *app.RequestContext) {
		var req handler.QuizEvaluateRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		eval, err := gameHandler.HandleQuizEvaluate(&req)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, eval)
	})

	api.POST("/game/rapidfire", func(c context.Context, ctx *app.RequestContext) {
		var req handler.GameRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		questions, err := gameHandler.HandleRapidFire(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"questions": questions})
	})

	api.POST("/game/rapidfire/evaluate", func(c context.Context, ctx *app.RequestContext) {
		var req handler.RapidFireEvaluateRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		resp, err := gameHandler.HandleRapidFireEvaluate(&req)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.POST("/game/scenario", func(c context.Context, ctx *app.RequestContext) {
		var req handler.GameRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		scenario, err := gameHandler.HandleScenario(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, scenario)
	})
}
