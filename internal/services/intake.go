package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/clients/gcp"
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/repos"
	"github.com/proxe-ai/leadbridge/internal/types"
)

const (
	recordingFetchTimeout = 5 * time.Second
	maxRecordingBytes     = 16 << 20
)

// WhatsAppPayload mirrors the provider webhook body.
type WhatsAppPayload struct {
	Brand               string            `json:"brand"`
	Name                *string           `json:"name"`
	Email               *string           `json:"email"`
	Phone               *string           `json:"phone"`
	WhatsAppID          string            `json:"whatsapp_id"`
	Message             string            `json:"message"`
	ConversationSummary *string           `json:"conversation_summary"`
	BookingStatus       *string           `json:"booking_status"`
	BookingDate         *string           `json:"booking_date"`
	BookingTime         *string           `json:"booking_time"`
	MessageCount        *int              `json:"message_count"`
	Metadata            map[string]any    `json:"metadata"`
	ExtractedFields     map[string]string `json:"extracted_fields"`
}

// VoicePayload mirrors the voice provider webhook body.
type VoicePayload struct {
	Brand           string            `json:"brand"`
	Name            *string           `json:"name"`
	Email           *string           `json:"email"`
	Phone           *string           `json:"phone"`
	CallID          string            `json:"call_id"`
	DurationSeconds int               `json:"duration"`
	Transcript      string            `json:"transcript"`
	RecordingURL    string            `json:"recording_url"`
	RecordingMime   string            `json:"recording_mime"`
	BookingDate     *string           `json:"booking_date"`
	BookingTime     *string           `json:"booking_time"`
	Metadata        map[string]any    `json:"metadata"`
	ExtractedFields map[string]string `json:"extracted_fields"`
}

// IntakeService turns provider webhook deliveries into lead upserts and
// appended messages. Deliveries are at-least-once; redelivery re-runs the
// upsert, which is safe (timestamps advance, nothing duplicates).
type IntakeService interface {
	HandleWhatsApp(ctx context.Context, payload WhatsAppPayload) (LeadResult, error)
	HandleVoice(ctx context.Context, payload VoicePayload) (LeadResult, error)
}

type intakeService struct {
	db           *gorm.DB
	log          *logger.Logger
	leadService  LeadService
	messageRepo  repos.MessageRepo
	speech       gcp.Speech
	httpClient   *http.Client
	defaultBrand string
}

func NewIntakeService(db *gorm.DB, log *logger.Logger, leadService LeadService, messageRepo repos.MessageRepo, speech gcp.Speech, defaultBrand string) IntakeService {
	serviceLog := log.With("service", "IntakeService")
	return &intakeService{
		db:           db,
		log:          serviceLog,
		leadService:  leadService,
		messageRepo:  messageRepo,
		speech:       speech,
		httpClient:   &http.Client{Timeout: recordingFetchTimeout},
		defaultBrand: defaultBrand,
	}
}

func (is *intakeService) HandleWhatsApp(ctx context.Context, payload WhatsAppPayload) (LeadResult, error) {
	brand := payload.Brand
	if brand == "" {
		brand = is.defaultBrand
	}

	update := types.ChannelContextUpdate{
		ConversationSummary: payload.ConversationSummary,
		BookingStatus:       payload.BookingStatus,
		BookingDate:         payload.BookingDate,
		BookingTime:         payload.BookingTime,
		MessageCount:        payload.MessageCount,
		ExtractedFields:     payload.ExtractedFields,
	}
	if payload.Message != "" {
		update.LastCustomerMessage = &payload.Message
	}

	result, err := is.leadService.UpsertFromChannelEvent(ctx, ChannelEvent{
		Brand:        brand,
		Channel:      types.ChannelWhatsApp,
		CustomerName: payload.Name,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Context:      update,
	})
	if err != nil {
		return LeadResult{}, err
	}

	if payload.Message != "" {
		meta := map[string]any{"whatsapp_id": payload.WhatsAppID}
		for k, v := range payload.Metadata {
			meta[k] = v
		}
		is.appendMessage(ctx, &types.Message{
			LeadID:   &result.LeadID,
			Brand:    brand,
			Channel:  types.ChannelWhatsApp,
			Sender:   types.SenderCustomer,
			Content:  payload.Message,
			Metadata: mustJSON(meta),
		})
	}
	return result, nil
}

func (is *intakeService) HandleVoice(ctx context.Context, payload VoicePayload) (LeadResult, error) {
	brand := payload.Brand
	if brand == "" {
		brand = is.defaultBrand
	}

	transcript := strings.TrimSpace(payload.Transcript)
	transcriptStatus := "available"
	if transcript == "" && payload.RecordingURL != "" {
		transcript = is.transcribeRecording(ctx, payload.RecordingURL, payload.RecordingMime)
		if transcript == "" {
			transcriptStatus = "pending"
		}
	} else if transcript == "" {
		transcriptStatus = "missing"
	}

	extracted := map[string]string{}
	for k, v := range payload.ExtractedFields {
		extracted[k] = v
	}
	if payload.CallID != "" {
		extracted["call_id"] = payload.CallID
	}
	if payload.DurationSeconds > 0 {
		extracted["call_duration_seconds"] = strconv.Itoa(payload.DurationSeconds)
	}

	update := types.ChannelContextUpdate{
		BookingDate:      payload.BookingDate,
		BookingTime:      payload.BookingTime,
		ExtractedFields:  extracted,
		TranscriptStatus: &transcriptStatus,
	}
	if transcript != "" {
		update.ConversationSummary = &transcript
	}

	result, err := is.leadService.UpsertFromChannelEvent(ctx, ChannelEvent{
		Brand:        brand,
		Channel:      types.ChannelVoice,
		CustomerName: payload.Name,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Context:      update,
	})
	if err != nil {
		return LeadResult{}, err
	}

	if transcript != "" {
		meta := map[string]any{"call_id": payload.CallID, "duration": payload.DurationSeconds}
		for k, v := range payload.Metadata {
			meta[k] = v
		}
		is.appendMessage(ctx, &types.Message{
			LeadID:      &result.LeadID,
			Brand:       brand,
			Channel:     types.ChannelVoice,
			Sender:      types.SenderCustomer,
			Content:     transcript,
			MessageType: "transcript",
			Metadata:    mustJSON(meta),
		})
	}
	return result, nil
}

// transcribeRecording degrades to "" on any failure; the voice event is still
// recorded with transcript_status=pending.
func (is *intakeService) transcribeRecording(ctx context.Context, url, mimeType string) string {
	if is.speech == nil {
		return ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, recordingFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		is.log.Warn("Bad recording URL", "url", url, "error", err)
		return ""
	}
	resp, err := is.httpClient.Do(req)
	if err != nil {
		is.log.Warn("Recording fetch failed", "url", url, "error", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		is.log.Warn("Recording fetch returned non-200", "url", url, "status", resp.StatusCode)
		return ""
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordingBytes))
	if err != nil {
		is.log.Warn("Recording read failed", "url", url, "error", err)
		return ""
	}
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}

	transcript, err := is.speech.TranscribeAudioBytes(ctx, audio, mimeType)
	if err != nil {
		is.log.Warn("Transcription failed", "url", url, "error", err)
		return ""
	}
	return strings.TrimSpace(transcript)
}

// appendMessage is best-effort: the lead upsert already committed, a missed
// message row must not fail the webhook.
func (is *intakeService) appendMessage(ctx context.Context, msg *types.Message) {
	if _, err := is.messageRepo.Create(ctx, nil, []*types.Message{msg}); err != nil {
		is.log.Warn("Failed to append message", "channel", msg.Channel, "error", err)
	}
}

func mustJSON(v map[string]any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
