package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"career-agent-go/internal/agent"
	"career-agent-go/internal/api/handler"
	"career-agent-go/internal/api/router"
	"career-agent-go/internal/coach"
	"career-agent-go/internal/config"
	"career-agent-go/internal/logger"
	"career-agent-go/internal/processor"
	"career-agent-go/internal/storage"
	"career-agent-go/internal/tracing"
	"career-agent-go/pkg/ratelimit"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app/server"
	hlog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	initLogger(cfg)
	logger.Info().Str("config", configPath).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry追踪
	var shutdownTracing func(context.Context) error
	if cfg.Tracing.Enabled {
		shutdownTracing, err = tracing.InitProvider(ctx, cfg.Server.Name, cfg.Tracing.Endpoint, cfg.Tracing.SamplerRatio)
		if err != nil {
			logger.Fatal().Err(err).Msg("初始化追踪失败")
		}
		logger.Info().Str("endpoint", cfg.Tracing.Endpoint).Msg("追踪已启用")
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()
	logger.Info().Msg("存储服务初始化成功")

	service, err := processor.NewFieldExtractionService(ctx, cfg, storageManager, &logger.Logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化字段提取服务失败")
	}
	logger.Info().Msg("字段提取服务初始化成功")

	careerCoach, interviewGame, skillsAnalyzer := initAIComponents(cfg, storageManager)

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, service)
	handlers := &router.Handlers{
		Resume:   resumeHandler,
		Analysis: handler.NewAnalysisHandler(service, skillsAnalyzer),
		Coach:    handler.NewCoachHandler(careerCoach),
		Game:     handler.NewGameHandler(interviewGame),
	}

	// 上传消费者，依赖RabbitMQ与MinIO，组件缺失时跳过
	if storageManager.RabbitMQ != nil {
		if _, err := resumeHandler.StartUploadConsumer(); err != nil {
			logger.Fatal().Err(err).Msg("启动简历上传消费者失败")
		}
		logger.Info().Int("workers", cfg.RabbitMQ.ConsumerWorkers).Msg("简历上传消费者已启动")
	} else {
		logger.Warn().Msg("RabbitMQ未配置，异步提取流程不可用")
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, handlers)
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP路由注册成功")

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("关闭追踪失败")
		}
	}
	logger.Info().Msg("优雅退出完成")
}

func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	logger.Logger = logger.Logger.With().Str("app", cfg.Server.Name).Logger()

	// Hertz框架日志也走zerolog
	hlog.SetLogger(hertzzerolog.From(logger.Logger))
}

// initAIComponents 初始化教练、面试游戏和技能分析器
// 未配置模型服务时返回nil，对应接口返回明确错误而非启动失败
func initAIComponents(cfg *config.Config, storageManager *storage.Storage) (*coach.CareerCoach, *coach.InterviewGame, *coach.SkillsAnalyzer) {
	if cfg.OpenAI.APIKey == "" {
		logger.Warn().Msg("未配置OpenAI API密钥，教练/游戏/ATS接口不可用")
		return nil, nil, nil
	}

	coachModel, err := buildChatModel(cfg, "coach")
	if err != nil {
		logger.Warn().Err(err).Msg("初始化教练模型失败")
		return nil, nil, nil
	}
	gameModel, err := buildChatModel(cfg, "game")
	if err != nil {
		logger.Warn().Err(err).Msg("初始化游戏模型失败")
		gameModel = coachModel
	}

	// 会话记忆优先使用Redis，不可用时教练内部回退到进程内存
	var memory agent.ChatMemory
	if storageManager.Redis != nil {
		memory, err = agent.NewRedisChatMemory(storageManager.Redis.Client, "chat_history:", 24*time.Hour)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化Redis会话记忆失败，回退到进程内存")
			memory = nil
		}
	}

	careerCoach, err := coach.NewCareerCoach(coachModel, memory)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化职业教练失败")
	}
	interviewGame, err := coach.NewInterviewGame(gameModel)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化面试游戏失败")
	}
	skillsAnalyzer, err := coach.NewSkillsAnalyzer(coachModel)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化技能分析器失败")
	}
	return careerCoach, interviewGame, skillsAnalyzer
}

// buildChatModel 按任务选择模型并套上QPM限流
func buildChatModel(cfg *config.Config, task string) (model.BaseChatModel, error) {
	modelName := cfg.OpenAI.Model
	if name, ok := cfg.OpenAI.TaskModels[task]; ok && name != "" {
		modelName = name
	}

	chatModel, err := agent.NewOpenAIChatModel(cfg.OpenAI.APIKey, modelName, cfg.OpenAI.APIURL)
	if err != nil {
		return nil, err
	}

	if qpm, ok := cfg.ModelQPMLimits[modelName]; ok && qpm > 0 {
		limited := ratelimit.NewRateLimitedChatModel(chatModel, qpm)
		return limited.WithRetryPolicy(2*time.Second, 3), nil
	}
	return chatModel, nil
}
