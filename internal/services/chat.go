package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/clients/anthropic"
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/repos"
	"github.com/proxe-ai/leadbridge/internal/types"
)

const chatHistoryWindow = 20

type ChatTurn struct {
	Brand             string  `json:"brand"`
	ExternalSessionID string  `json:"session_id"`
	Message           string  `json:"message"`
	CustomerName      *string `json:"customer_name"`
	CustomerEmail     *string `json:"customer_email"`
	CustomerPhone     *string `json:"customer_phone"`
}

type ChatReply struct {
	SessionID uuid.UUID  `json:"session_id"`
	Reply     string     `json:"reply"`
	LeadID    *uuid.UUID `json:"lead_id,omitempty"`
}

// ChatService handles one web-chat turn: persist the customer message,
// generate the agent reply, and resolve the session to a lead as soon as the
// conversation yields contact info. A turn without contact info is still a
// valid chat; lead resolution simply waits (or is repaired later by the
// backfill reconciler).
type ChatService interface {
	HandleTurn(ctx context.Context, turn ChatTurn) (ChatReply, error)
}

type chatService struct {
	db           *gorm.DB
	log          *logger.Logger
	sessionRepo  repos.ChannelSessionRepo
	messageRepo  repos.MessageRepo
	leadService  LeadService
	ai           anthropic.Client
	systemPrompt string
	defaultBrand string
}

func NewChatService(db *gorm.DB, log *logger.Logger, sessionRepo repos.ChannelSessionRepo, messageRepo repos.MessageRepo, leadService LeadService, ai anthropic.Client, systemPrompt, defaultBrand string) ChatService {
	serviceLog := log.With("service", "ChatService")
	return &chatService{
		db:           db,
		log:          serviceLog,
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		leadService:  leadService,
		ai:           ai,
		systemPrompt: systemPrompt,
		defaultBrand: defaultBrand,
	}
}

func (cs *chatService) HandleTurn(ctx context.Context, turn ChatTurn) (ChatReply, error) {
	if turn.ExternalSessionID == "" {
		return ChatReply{}, types.ValidationError("session_id is required")
	}
	if turn.Message == "" {
		return ChatReply{}, types.ValidationError("message is required")
	}
	brand := turn.Brand
	if brand == "" {
		brand = cs.defaultBrand
	}

	session, err := cs.ensureSession(ctx, brand, turn)
	if err != nil {
		return ChatReply{}, err
	}

	if _, err := cs.messageRepo.Create(ctx, nil, []*types.Message{{
		LeadID:    session.LeadID,
		SessionID: &session.ID,
		Brand:     brand,
		Channel:   types.ChannelWeb,
		Sender:    types.SenderCustomer,
		Content:   turn.Message,
	}}); err != nil {
		return ChatReply{}, err
	}

	reply, err := cs.generateReply(ctx, session, turn.Message)
	if err != nil {
		return ChatReply{}, err
	}

	if _, err := cs.messageRepo.Create(ctx, nil, []*types.Message{{
		LeadID:    session.LeadID,
		SessionID: &session.ID,
		Brand:     brand,
		Channel:   types.ChannelWeb,
		Sender:    types.SenderAgent,
		Content:   reply,
	}}); err != nil {
		cs.log.Warn("Failed to persist agent reply", "session_id", session.ID, "error", err)
	}

	leadID := cs.resolveLead(ctx, brand, session, turn, reply)

	messageCount := session.MessageCount + 2
	sessionFields := map[string]interface{}{
		"message_count": messageCount,
		"updated_at":    time.Now().UTC(),
	}
	applyContactFields(sessionFields, turn)
	if err := cs.sessionRepo.UpdateFields(ctx, nil, session.ID, sessionFields); err != nil {
		cs.log.Warn("Failed to update session", "session_id", session.ID, "error", err)
	}

	return ChatReply{SessionID: session.ID, Reply: reply, LeadID: leadID}, nil
}

func (cs *chatService) ensureSession(ctx context.Context, brand string, turn ChatTurn) (*types.ChannelSession, error) {
	session, err := cs.sessionRepo.GetByExternalID(ctx, nil, brand, turn.ExternalSessionID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	session, err = cs.sessionRepo.Create(ctx, nil, &types.ChannelSession{
		ID:                uuid.New(),
		ExternalSessionID: turn.ExternalSessionID,
		Brand:             brand,
		Channel:           types.ChannelWeb,
		CustomerName:      turn.CustomerName,
		CustomerEmail:     turn.CustomerEmail,
		CustomerPhone:     turn.CustomerPhone,
	})
	if err == nil {
		return session, nil
	}
	if errors.Is(err, types.ErrConflict) {
		// concurrent first turns on the same widget session
		return cs.sessionRepo.GetByExternalID(ctx, nil, brand, turn.ExternalSessionID)
	}
	return nil, err
}

func (cs *chatService) generateReply(ctx context.Context, session *types.ChannelSession, message string) (string, error) {
	history, err := cs.messageRepo.GetBySessionID(ctx, nil, session.ID, chatHistoryWindow)
	if err != nil {
		cs.log.Warn("Failed to load chat history", "session_id", session.ID, "error", err)
		history = nil
	}

	turns := make([]anthropic.Turn, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.Sender == types.SenderAgent {
			role = "assistant"
		}
		turns = append(turns, anthropic.Turn{Role: role, Content: m.Content})
	}
	if len(turns) == 0 || turns[len(turns)-1].Content != message {
		turns = append(turns, anthropic.Turn{Role: "user", Content: message})
	}

	return cs.ai.GenerateReply(ctx, cs.systemPrompt, turns)
}

// resolveLead upserts once the turn carries contact info. Validation errors
// (no phone/email yet) are expected mid-conversation and swallowed.
func (cs *chatService) resolveLead(ctx context.Context, brand string, session *types.ChannelSession, turn ChatTurn, reply string) *uuid.UUID {
	name := turn.CustomerName
	if name == nil {
		name = session.CustomerName
	}
	email := turn.CustomerEmail
	if email == nil {
		email = session.CustomerEmail
	}
	phone := turn.CustomerPhone
	if phone == nil {
		phone = session.CustomerPhone
	}

	messageCount := session.MessageCount + 2
	result, err := cs.leadService.UpsertFromChannelEvent(ctx, ChannelEvent{
		Brand:        brand,
		Channel:      types.ChannelWeb,
		CustomerName: name,
		Email:        email,
		Phone:        phone,
		Context: types.ChannelContextUpdate{
			MessageCount:        &messageCount,
			LastCustomerMessage: &turn.Message,
			LastAgentMessage:    &reply,
		},
	})
	if err != nil {
		if !errors.Is(err, types.ErrValidation) {
			cs.log.Warn("Lead upsert failed for chat turn", "session_id", session.ID, "error", err)
		}
		return session.LeadID
	}

	if session.LeadID == nil {
		if err := cs.sessionRepo.SetLeadID(ctx, nil, session.ID, result.LeadID); err != nil {
			cs.log.Warn("Failed to link session to lead", "session_id", session.ID, "lead_id", result.LeadID, "error", err)
		}
	}
	return &result.LeadID
}

func applyContactFields(fields map[string]interface{}, turn ChatTurn) {
	if turn.CustomerName != nil {
		fields["customer_name"] = *turn.CustomerName
	}
	if turn.CustomerEmail != nil {
		fields["customer_email"] = *turn.CustomerEmail
	}
	if turn.CustomerPhone != nil {
		fields["customer_phone"] = *turn.CustomerPhone
	}
}
