package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/causewayd/internal/confession"
	"github.com/fyrsmithlabs/causewayd/internal/dispatch"
	"github.com/fyrsmithlabs/causewayd/internal/narrative"
	"github.com/fyrsmithlabs/causewayd/internal/persona"
	"github.com/fyrsmithlabs/causewayd/internal/store"
	"github.com/fyrsmithlabs/causewayd/internal/vision"
)

// maxUploadSize caps multipart uploads. Screenshots and short voice notes
// stay far below this.
const maxUploadSize = 15 << 20

// handleAnalyze runs the dispatch protocol. Provider failures surface as
// degraded 200 envelopes; only malformed input gets a 4xx.
func (s *Server) handleAnalyze(c echo.Context) error {
	var req dispatch.Request
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid analyze request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.config.AnalyzeTimeout)
	defer cancel()

	env, err := s.deps.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		// Dispatch errors are input validation by contract.
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, env)
}

// handleAnalyzeConfession returns the single-shot confession verdict,
// served from cache when one exists.
func (s *Server) handleAnalyzeConfession(c echo.Context) error {
	var req confession.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.config.AnalyzeTimeout)
	defer cancel()

	res, err := s.deps.Confession.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, confession.ErrEmptyConfession) {
			return echo.NewHTTPError(http.StatusBadRequest, "confession text is required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
	}

	return c.JSON(http.StatusOK, res)
}

// VisionRequest is the request body for POST /api/v1/analyze-vision.
type VisionRequest struct {
	GsURI        string     `json:"gsUri"`
	Persona      persona.ID `json:"persona"`
	Locale       string     `json:"language"`
	SystemPrompt string     `json:"personaSystemPrompt"`
	MIMEType     string     `json:"mimeType"`
}

// handleAnalyzeVision rules on an uploaded screenshot. The persona prompt
// comes from the registry unless the caller supplied an override.
func (s *Server) handleAnalyzeVision(c echo.Context) error {
	if s.deps.Vision == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vision analysis not configured")
	}

	var req VisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.GsURI == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "gsUri is required")
	}

	personaPrompt := req.SystemPrompt
	if personaPrompt == "" {
		personaPrompt = s.deps.Personas.Get(req.Persona).Prompt(req.Locale)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.config.AnalyzeTimeout)
	defer cancel()

	verdict, err := s.deps.Vision.Analyze(ctx, req.GsURI, personaPrompt, req.MIMEType)
	if err != nil {
		if errors.Is(err, vision.ErrModelNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "vision model not available")
		}
		s.logger.Error("vision analysis failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "vision analysis failed")
	}

	return c.JSON(http.StatusOK, verdict)
}

// handleStarters returns the tappable triage choices a client shows before
// the first turn of a conversation.
func (s *Server) handleStarters(c echo.Context) error {
	id := persona.ID(c.QueryParam("persona"))
	starter, ok := persona.Starters(id, c.QueryParam("language"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no starters for persona")
	}
	return c.JSON(http.StatusOK, starter)
}

// TranscriptRequest is the request body for the narrative endpoints.
type TranscriptRequest struct {
	Messages []dispatch.Turn `json:"messages"`
}

// ConfessionTextResponse is the response body for POST /api/v1/generate-confession.
type ConfessionTextResponse struct {
	ConfessionText string `json:"confession_text"`
}

// ReportTextResponse is the response body for POST /api/v1/generate-report.
type ReportTextResponse struct {
	ReportText string `json:"report_text"`
}

func (s *Server) handleGenerateConfession(c echo.Context) error {
	history, err := s.bindTranscript(c)
	if err != nil {
		return err
	}

	text, err := s.deps.Narrative.Confession(c.Request().Context(), history)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "generation failed")
	}
	return c.JSON(http.StatusOK, ConfessionTextResponse{ConfessionText: text})
}

func (s *Server) handleGenerateReport(c echo.Context) error {
	history, err := s.bindTranscript(c)
	if err != nil {
		return err
	}

	text, err := s.deps.Narrative.Report(c.Request().Context(), history)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "generation failed")
	}
	return c.JSON(http.StatusOK, ReportTextResponse{ReportText: text})
}

func (s *Server) bindTranscript(c echo.Context) ([]dispatch.Turn, error) {
	var req TranscriptRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Messages) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, narrative.ErrEmptyTranscript.Error())
	}
	return req.Messages, nil
}

// handleUpload stores a multipart file and returns the signed URL plus the
// gs:// URI the vision path consumes.
func (s *Server) handleUpload(c echo.Context) error {
	if s.deps.Uploader == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "upload storage not configured")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file provided")
	}
	if fileHeader.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer f.Close()

	obj, err := s.deps.Uploader.Upload(
		c.Request().Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		f,
	)
	if err != nil {
		s.logger.Error("upload failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	return c.JSON(http.StatusOK, obj)
}

// VoiceResponse is the response body for POST /api/v1/voice. AudioBase64
// is reserved for a future spoken reply and currently always null.
type VoiceResponse struct {
	UserText    string  `json:"user_text"`
	AIText      string  `json:"ai_text"`
	AudioBase64 *string `json:"audio_base64"`
}

// handleVoice transcribes a recorded voice note and runs it through the
// same dispatch path as a typed message.
func (s *Server) handleVoice(c echo.Context) error {
	if s.deps.Speech == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "voice not configured")
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no audio file provided")
	}
	if fileHeader.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "audio too large")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable audio")
	}
	defer f.Close()

	audio, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable audio")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.config.AnalyzeTimeout)
	defer cancel()

	userText, err := s.deps.Speech.Transcribe(ctx, audio, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		s.logger.Error("transcription failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "transcription failed")
	}
	if userText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "could not recognize speech")
	}

	history := parseVoiceHistory(c.FormValue("history"), s.logger)
	history = append(history, dispatch.Turn{Role: dispatch.RoleUser, Content: userText})

	req := dispatch.Request{
		History: history,
		Persona: persona.ID(c.FormValue("persona")),
		Locale:  c.FormValue("language"),
		Mood:    c.FormValue("mood"),
		Mode:    dispatch.Mode(c.FormValue("mode")),
	}

	env, err := s.deps.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	aiText := replyText(env)

	s.persistVoiceTurn(c.FormValue("session_id"), userText, aiText, env.ConfidenceScore)

	return c.JSON(http.StatusOK, VoiceResponse{
		UserText: userText,
		AIText:   aiText,
	})
}

// parseVoiceHistory decodes the prior turns sent alongside the recording.
// Broken history degrades to an empty slice; the voice note still gets a
// reply.
func parseVoiceHistory(raw string, logger *zap.Logger) []dispatch.Turn {
	if raw == "" {
		return nil
	}
	var history []dispatch.Turn
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		logger.Warn("ignoring malformed voice history", zap.Error(err))
		return nil
	}
	return history
}

// replyText picks the spoken-back text from an envelope.
func replyText(env dispatch.Envelope) string {
	if env.Question != nil && *env.Question != "" {
		return *env.Question
	}
	if env.Insight != nil {
		return *env.Insight
	}
	return ""
}

// persistVoiceTurn writes both sides of the exchange to the row store.
// Best effort: persistence trouble never fails the response.
func (s *Server) persistVoiceTurn(sessionID, userText, aiText string, score int) {
	if sessionID == "" || !s.deps.Store.Enabled() {
		return
	}

	ctx := context.Background()
	if err := s.deps.Store.InsertMessage(ctx, store.MessageRow{
		SessionID: sessionID,
		Role:      dispatch.RoleUser,
		Content:   userText,
	}); err != nil {
		s.logger.Warn("failed to persist user voice turn", zap.Error(err))
		return
	}
	if err := s.deps.Store.InsertMessage(ctx, store.MessageRow{
		SessionID: sessionID,
		Role:      dispatch.RoleAssistant,
		Content:   aiText,
		RiskScore: &score,
	}); err != nil {
		s.logger.Warn("failed to persist assistant voice turn", zap.Error(err))
	}
}
