// vitalvoice-server: voice transcription and health-record API.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pulsekit/vitalvoice/internal/config"
	"github.com/pulsekit/vitalvoice/internal/log"
	"github.com/pulsekit/vitalvoice/pkg/chat"
	"github.com/pulsekit/vitalvoice/pkg/store"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
	"github.com/pulsekit/vitalvoice/pkg/tts"
	"github.com/pulsekit/vitalvoice/pkg/web"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.Server.LogLevel)
	logger := log.Component("main")

	scribeOpts := []transcribe.Option{
		transcribe.WithAPIKey(cfg.Transcribe.APIKey),
		transcribe.WithModel(cfg.Transcribe.Model),
		transcribe.WithLanguage(cfg.Transcribe.Language),
		transcribe.WithTimeout(cfg.Transcribe.RequestTimeout),
		transcribe.WithMaxAudioBytes(cfg.Transcribe.MaxUploadBytes),
		transcribe.WithLogger(log.L()),
	}
	if cfg.Transcribe.BaseURL != "" {
		scribeOpts = append(scribeOpts, transcribe.WithBaseURL(cfg.Transcribe.BaseURL))
	}
	scribe, err := transcribe.NewScribe(scribeOpts...)
	if err != nil {
		logger.Error("transcriber setup failed", "error", err)
		os.Exit(1)
	}

	var fallback transcribe.Recognizer
	if cfg.Transcribe.RecognizerURL != "" {
		fallback = transcribe.NewStreamRecognizer(cfg.Transcribe.RecognizerURL,
			transcribe.WithRecognizerKey(cfg.Transcribe.RecognizerKey),
			transcribe.WithRecognizerLogger(log.L()),
		)
	}
	transcriber := transcribe.NewChain(scribe, fallback)

	var records store.Store
	if cfg.Store.RedisURL != "" {
		records, err = store.NewRedis(cfg.Store.RedisURL, log.L())
		if err != nil {
			logger.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		logger.Info("record store: redis")
	} else {
		records = store.NewMemory()
		logger.Info("record store: in-memory")
	}
	defer records.Close()

	serverOpts := []web.ServerOption{
		web.WithServerLogger(log.L()),
		web.WithRecordStore(records),
		web.WithMaxAudioBytes(cfg.Transcribe.MaxUploadBytes),
	}
	if cfg.Speech.APIKey != "" && cfg.Speech.VoiceID != "" {
		speech, err := tts.NewElevenLabs(
			tts.WithAPIKey(cfg.Speech.APIKey),
			tts.WithVoice(cfg.Speech.VoiceID),
			tts.WithLogger(log.L()),
		)
		if err != nil {
			logger.Error("speech setup failed", "error", err)
			os.Exit(1)
		}
		defer speech.Close()
		serverOpts = append(serverOpts, web.WithSpeech(speech))
	}

	server := web.NewServer(cfg.Server.Addr, transcriber, chat.NewScriptedResponder(), serverOpts...)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
