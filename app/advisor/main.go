package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"

	"github.com/superfeelapi/goEmotionAdvisor/business/advisor"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotion"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotionlog"
	"github.com/superfeelapi/goEmotionAdvisor/business/worker"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/config"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/external/google"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/external/hume"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/external/neuphonic"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/external/voiceAnalysis"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/logger"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/redis"
)

var (
	service   = "advisor"
	version   string
	buildTime string
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	// =================================================================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Args    conf.Args
		Session struct {
			UserID     string
			Transcript string
		}
		Analysis struct {
			Backend          string        `conf:"default:voiceanalysis,help:voiceanalysis or hume"`
			MaxChunkDuration time.Duration `conf:"default:5s"`
			ChunkTimeout     time.Duration `conf:"default:20s"`
			Concurrency      int           `conf:"default:1"`
			RatePerSecond    float64       `conf:"default:0"`
			Enhance          bool          `conf:"default:true"`
			TempDirectory    string
		}
		VoiceAnalysis struct {
			ApiEndpoint string `conf:"default:http://localhost:8000/predict"`
			ApiKey      string `conf:"mask"`
		}
		Hume struct {
			Endpoint  string `conf:"default:wss://api.hume.ai/v0/stream/models"`
			ApiKey    string `conf:"mask"`
			RawLabels bool   `conf:"default:false"`
		}
		Tables struct {
			Responses string
			Emotions  string
			Tips      string
		}
		Redis struct {
			Address        string
			Password       string `conf:"mask"`
			OutcomeChannel string `conf:"default:emotionAdvisor:outcome"`
		}
		EmotionLog struct {
			Backend    string `conf:"default:none,help:none, redis or sqlite"`
			SQLitePath string `conf:"default:emotion_logs.db"`
			Window     int    `conf:"default:10"`
		}
		Neuphonic struct {
			ApiKey          string `conf:"mask"`
			VoiceID         string
			LangCode        string  `conf:"default:en"`
			Speed           float64 `conf:"default:1.05"`
			SpeechDirectory string  `conf:"default:speech"`
		}
		Google struct {
			CredentialsPath string `conf:"noprint"`
			SourceLanguage  string `conf:"default:en"`
			TargetLanguage  string
		}
		Logger struct {
			LogDirectory string `conf:"noprint"`
		}
	}{
		Version: conf.Version{
			Build: version,
			Desc:  buildTime,
		},
	}

	const prefix = "ADVISOR"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	wavPath := cfg.Args.Num(0)
	if wavPath == "" {
		return errors.New("usage: advisor [options] <recording.wav>")
	}

	// =================================================================================================================
	// Application Logger

	log, err := logger.New(cfg.Logger.LogDirectory, service, version)
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer log.Sync()

	out, err := conf.String(&cfg)
	if err != nil {
		log.Errorw("startup", "ERROR", err)
	}
	log.Infow("startup", "config", out)

	// =================================================================================================================
	// Advice Tables

	tables, err := config.GetTables(config.Paths{
		Responses: cfg.Tables.Responses,
		Emotions:  cfg.Tables.Emotions,
		Tips:      cfg.Tables.Tips,
	})
	if err != nil {
		return fmt.Errorf("loading tables: %w", err)
	}

	// =================================================================================================================
	// Classifier

	var classifier worker.Classifier
	switch cfg.Analysis.Backend {
	case "voiceanalysis":
		classifier = voiceAnalysis.New(cfg.VoiceAnalysis.ApiEndpoint, cfg.VoiceAnalysis.ApiKey)
	case "hume":
		labels := hume.DefaultLabels
		if cfg.Hume.RawLabels {
			labels = nil
		}
		classifier = hume.New(cfg.Hume.Endpoint, cfg.Hume.ApiKey, labels)
	default:
		return fmt.Errorf("unknown analysis backend %q", cfg.Analysis.Backend)
	}

	settings := worker.Settings{
		Logger:     log,
		Classifier: classifier,
		Advisor:    advisor.New(tables),
		Config: worker.Config{
			MaxChunkDuration: cfg.Analysis.MaxChunkDuration,
			ChunkTimeout:     cfg.Analysis.ChunkTimeout,
			Concurrency:      cfg.Analysis.Concurrency,
			RatePerSecond:    cfg.Analysis.RatePerSecond,
			TempDirectory:    cfg.Analysis.TempDirectory,
			SpeechDirectory:  cfg.Neuphonic.SpeechDirectory,
			EmotionOrder:     tables.Order,
			Enhance:          cfg.Analysis.Enhance,
		},
	}

	// =================================================================================================================
	// Redis

	var redisClient *redis.Redis
	if cfg.Redis.Address != "" {
		redisClient, err = redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.OutcomeChannel, log)
		if err != nil {
			log.Errorw("startup", "ERROR", err)
		} else {
			defer redisClient.Close()
			settings.Publisher = redisClient
		}
	}

	// =================================================================================================================
	// Emotion Log

	var elog *emotionlog.Log
	switch cfg.EmotionLog.Backend {
	case "none":
	case "redis":
		if redisClient == nil {
			log.Errorw("startup", "ERROR", "emotion log needs redis")
			break
		}
		elog = emotionlog.New(emotionlog.NewRedisStore(redisClient.Client, ""), log, emotionlog.WithWindow(cfg.EmotionLog.Window))
	case "sqlite":
		store, err := emotionlog.NewSQLiteStore(cfg.EmotionLog.SQLitePath)
		if err != nil {
			log.Errorw("startup", "ERROR", err)
			break
		}
		elog = emotionlog.New(store, log, emotionlog.WithWindow(cfg.EmotionLog.Window))
	default:
		return fmt.Errorf("unknown emotion log backend %q", cfg.EmotionLog.Backend)
	}
	if elog != nil {
		defer elog.Close()
		settings.EmotionLog = elog
	}

	// =================================================================================================================
	// Text2Speech

	if cfg.Neuphonic.ApiKey != "" {
		settings.Speaker = neuphonic.New(neuphonic.Config{
			ApiKey:   cfg.Neuphonic.ApiKey,
			VoiceID:  cfg.Neuphonic.VoiceID,
			LangCode: cfg.Neuphonic.LangCode,
			Speed:    cfg.Neuphonic.Speed,
		})
	}

	// =================================================================================================================
	// Translation

	if cfg.Google.TargetLanguage != "" {
		translation, err := google.NewTranslation(cfg.Google.CredentialsPath, cfg.Google.SourceLanguage, cfg.Google.TargetLanguage)
		if err != nil {
			log.Errorw("startup", "ERROR", err)
		} else {
			defer translation.Close()
			settings.Translator = translation
		}
	}

	// =================================================================================================================
	// Run Worker

	rec, err := audio.ReadWAV(wavPath)
	if err != nil {
		return fmt.Errorf("reading recording: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.Run(settings)

	o, err := w.Process(ctx, emotion.NewSession(cfg.Session.UserID, rec, cfg.Session.Transcript))
	w.Shutdown()
	if err != nil {
		return fmt.Errorf("processing %s: %w", wavPath, err)
	}

	report(o)

	if elog != nil && o.UserID != "" {
		flagged, err := elog.Flagged(ctx, o.UserID)
		if err != nil {
			log.Errorw("shutdown", "ERROR", err)
		}
		if flagged {
			fmt.Println()
			fmt.Println("Some of your recent sessions mention distress. Please consider reaching out to someone you trust or a local helpline.")
		}
	}

	return nil
}

func report(o worker.Outcome) {
	fmt.Println(o.Message())

	if o.Detected {
		fmt.Printf("Confidence: %.2f%% over %d chunks (%d skipped)\n", o.Advice.Percent(), o.Chunks, o.Skipped)
		fmt.Println()
		fmt.Println("Top emotions:")
		for _, s := range o.Top {
			fmt.Printf("  %s %-10s %6.2f%%\n", advisor.Emoji(s.Name), s.Name, s.Score*100)
		}
	}

	a := o.Advice
	if o.Translated != nil {
		a = *o.Translated
	}

	fmt.Println()
	fmt.Println("Advice:")
	for _, line := range a.SpecificAdvice {
		fmt.Printf("  - %s\n", line)
	}
	fmt.Println()
	fmt.Printf("Tip: %s\n", a.GeneralTip)
}
