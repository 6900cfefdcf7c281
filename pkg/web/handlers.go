package web

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/pulsekit/vitalvoice/pkg/capture"
	"github.com/pulsekit/vitalvoice/pkg/extract"
	"github.com/pulsekit/vitalvoice/pkg/store"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// TranscribeRequest is the JSON body for base64 uploads. Multipart
// uploads use a form file named "file" instead.
type TranscribeRequest struct {
	Audio    string `json:"audio"`
	MIMEType string `json:"mime_type"`
	ModelID  string `json:"model_id"`
	Language string `json:"language"`
}

// TranscribeResponse is the transcription result plus the metrics
// extracted from it.
type TranscribeResponse struct {
	Text     string               `json:"text"`
	Language string               `json:"language"`
	Metrics  map[string]string    `json:"metrics"`
	Segments []transcribe.Segment `json:"segments"`
}

func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	var (
		data     []byte
		mimeType = "audio/wav"
		opts     transcribe.Options
		err      error
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		data, mimeType, opts, err = s.readMultipartAudio(c)
	} else {
		var req TranscribeRequest
		if err := c.BodyParser(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
		}
		data, err = transcribe.DecodeBase64Audio(req.Audio, s.maxAudioBytes)
		if req.MIMEType != "" {
			mimeType = req.MIMEType
		}
		opts = transcribe.Options{Language: req.Language, Model: req.ModelID}
	}
	if err != nil {
		return transcribeError(c, err)
	}

	buf, err := capture.NewAudioBuffer(data, mimeType)
	if err != nil {
		return transcribeError(c, err)
	}

	result, err := s.transcriber.Transcribe(c.Context(), buf, opts)
	if err != nil {
		s.logger.Warn("transcription failed", "error", err)
		return transcribeError(c, err)
	}

	metrics := extract.Extract(result.Text)
	out := TranscribeResponse{
		Text:     result.Text,
		Language: result.Language,
		Metrics:  make(map[string]string, len(metrics)),
		Segments: result.Segments,
	}
	for k, v := range metrics {
		out.Metrics[string(k)] = v
	}
	return c.JSON(out)
}

func (s *Server) readMultipartAudio(c *fiber.Ctx) ([]byte, string, transcribe.Options, error) {
	opts := transcribe.Options{
		Language: c.FormValue("language"),
		Model:    c.FormValue("model_id"),
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", opts, capture.ErrEmptyCapture
	}
	if err := transcribe.CheckSize(int(fh.Size), s.maxAudioBytes); err != nil {
		return nil, "", opts, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", opts, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(s.maxAudioBytes)+1))
	if err != nil {
		return nil, "", opts, err
	}
	if err := transcribe.CheckSize(len(data), s.maxAudioBytes); err != nil {
		return nil, "", opts, err
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	return data, mimeType, opts, nil
}

// transcribeError maps pipeline errors onto HTTP statuses.
func transcribeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, transcribe.ErrPayloadTooLarge):
		return errorResponse(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, capture.ErrEmptyCapture):
		return errorResponse(c, fiber.StatusBadRequest, "no audio provided")
	case errors.Is(err, transcribe.ErrNoSpeechDetected):
		return errorResponse(c, fiber.StatusUnprocessableEntity, "no speech detected")
	case errors.Is(err, transcribe.ErrRateLimited):
		return errorResponse(c, fiber.StatusTooManyRequests, "transcription rate limited")
	case errors.Is(err, transcribe.ErrTimeout):
		return errorResponse(c, fiber.StatusGatewayTimeout, "transcription timed out")
	case errors.Is(err, transcribe.ErrServiceUnavailable), errors.Is(err, transcribe.ErrNetwork):
		return errorResponse(c, fiber.StatusBadGateway, "transcription service unavailable")
	default:
		return errorResponse(c, fiber.StatusInternalServerError, "transcription failed")
	}
}

func errorResponse(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// --- record CRUD ---

func (s *Server) handleCreateRecord(c *fiber.Ctx) error {
	var rec store.Record
	if err := c.BodyParser(&rec); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	rec.UserID = c.Params("user")

	if err := s.records.Create(c.Context(), &rec); err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (s *Server) handleListRecords(c *fiber.Ctx) error {
	metric := extract.MetricType(c.Query("type"))
	if metric != "" && !metric.Valid() {
		return errorResponse(c, fiber.StatusBadRequest, "unknown metric type")
	}
	limit := c.QueryInt("limit")

	recs, err := s.records.List(c.Context(), c.Params("user"), metric, limit)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"records": recs})
}

func (s *Server) handleGetRecord(c *fiber.Ctx) error {
	rec, err := s.records.Get(c.Context(), c.Params("user"), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(rec)
}

func (s *Server) handleUpdateRecord(c *fiber.Ctx) error {
	var rec store.Record
	if err := c.BodyParser(&rec); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	rec.UserID = c.Params("user")
	rec.ID = c.Params("id")

	if err := s.records.Update(c.Context(), &rec); err != nil {
		return storeError(c, err)
	}
	return c.JSON(rec)
}

func (s *Server) handleDeleteRecord(c *fiber.Ctx) error {
	if err := s.records.Delete(c.Context(), c.Params("user"), c.Params("id")); err != nil {
		return storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, "record not found")
	case errors.Is(err, store.ErrInvalidRecord):
		return errorResponse(c, fiber.StatusBadRequest, "invalid record")
	default:
		return errorResponse(c, fiber.StatusInternalServerError, "store error")
	}
}

// --- chat websocket ---

// ChatMessage is one client frame: base64 audio of the user's turn.
type ChatMessage struct {
	Audio    string `json:"audio"`
	MIMEType string `json:"mime_type"`
	Language string `json:"language"`
}

// ChatReply is one server frame: the transcript, the assistant's
// reply, and optionally synthesized reply audio.
type ChatReply struct {
	Transcript string `json:"transcript,omitempty"`
	Reply      string `json:"reply,omitempty"`
	Audio      string `json:"audio,omitempty"`
	Error      string `json:"error,omitempty"`
}

// handleChatWS runs chat turns over one connection: each client
// frame is a complete audio clip, each server frame a complete reply.
func (s *Server) handleChatWS(c *websocket.Conn) {
	defer c.Close()
	logger := s.logger.With("remote", c.RemoteAddr().String())

	for {
		var msg ChatMessage
		if err := c.ReadJSON(&msg); err != nil {
			return
		}

		reply := s.chatTurn(msg)
		if err := c.WriteJSON(reply); err != nil {
			logger.Warn("chat write failed", "error", err)
			return
		}
	}
}

func (s *Server) chatTurn(msg ChatMessage) ChatReply {
	ctx := context.Background()

	data, err := transcribe.DecodeBase64Audio(msg.Audio, s.maxAudioBytes)
	if err != nil {
		return ChatReply{Error: chatErrorMessage(err)}
	}
	mimeType := msg.MIMEType
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	buf, err := capture.NewAudioBuffer(data, mimeType)
	if err != nil {
		return ChatReply{Error: chatErrorMessage(err)}
	}

	result, err := s.transcriber.Transcribe(ctx, buf, transcribe.Options{Language: msg.Language})
	if err != nil {
		return ChatReply{Error: chatErrorMessage(err)}
	}
	if result.Empty() {
		return ChatReply{Error: chatErrorMessage(transcribe.ErrNoSpeechDetected)}
	}

	text, err := s.responder.Reply(ctx, result.Text)
	if err != nil {
		return ChatReply{Transcript: result.Text, Error: "could not generate a reply"}
	}

	out := ChatReply{Transcript: result.Text, Reply: text}
	if s.speech != nil {
		clip, err := s.speech.Synthesize(ctx, text)
		if err != nil {
			s.logger.Warn("reply synthesis failed", "error", err)
		} else {
			out.Audio = base64.StdEncoding.EncodeToString(clip.Audio)
		}
	}
	return out
}

func chatErrorMessage(err error) string {
	switch {
	case errors.Is(err, transcribe.ErrPayloadTooLarge):
		return "audio clip too large"
	case errors.Is(err, capture.ErrEmptyCapture):
		return "no audio provided"
	case errors.Is(err, transcribe.ErrNoSpeechDetected):
		return "no speech detected"
	default:
		return "transcription failed"
	}
}
