// Package web exposes the transcription and record surfaces over
// HTTP, plus a websocket endpoint for voice chat turns.
package web

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/pulsekit/vitalvoice/pkg/chat"
	"github.com/pulsekit/vitalvoice/pkg/store"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
	"github.com/pulsekit/vitalvoice/pkg/tts"
)

// Server serves the voice API.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	transcriber   transcribe.Transcriber
	responder     chat.Responder
	speech        tts.Provider
	records       store.Store
	maxAudioBytes int
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the structured logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger.With("component", "web.server")
	}
}

// WithSpeech enables synthesized audio replies on the chat endpoint.
func WithSpeech(speech tts.Provider) ServerOption {
	return func(s *Server) {
		s.speech = speech
	}
}

// WithRecordStore enables the record CRUD endpoints.
func WithRecordStore(records store.Store) ServerOption {
	return func(s *Server) {
		s.records = records
	}
}

// WithMaxAudioBytes sets the payload ceiling enforced on uploads.
func WithMaxAudioBytes(n int) ServerOption {
	return func(s *Server) {
		s.maxAudioBytes = n
	}
}

// NewServer creates the API server. transcriber is required;
// responder drives the chat endpoint.
func NewServer(addr string, transcriber transcribe.Transcriber, responder chat.Responder, opts ...ServerOption) *Server {
	s := &Server{
		addr:          addr,
		logger:        slog.Default().With("component", "web.server"),
		transcriber:   transcriber,
		responder:     responder,
		maxAudioBytes: transcribe.DefaultMaxAudioBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		AppName:               "vitalvoice",
		DisableStartupMessage: true,
		BodyLimit:             s.maxAudioBytes * 2, // base64 overhead headroom
	})
	app.Use(requestid.New())
	app.Use(cors.New())

	app.Get("/health", s.handleHealth)

	v1 := app.Group("/v1")
	v1.Post("/transcribe", s.handleTranscribe)

	if s.records != nil {
		users := v1.Group("/users/:user")
		users.Post("/records", s.handleCreateRecord)
		users.Get("/records", s.handleListRecords)
		users.Get("/records/:id", s.handleGetRecord)
		users.Put("/records/:id", s.handleUpdateRecord)
		users.Delete("/records/:id", s.handleDeleteRecord)
	}

	v1.Use("/chat", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	v1.Get("/chat", websocket.New(s.handleChatWS))

	s.app = app
	return s
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
