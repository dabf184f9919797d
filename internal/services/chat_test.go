package services

import (
	"context"
	"errors"
	"testing"

	"github.com/proxe-ai/leadbridge/internal/clients/anthropic"
	"github.com/proxe-ai/leadbridge/internal/types"
)

type fakeAI struct {
	reply string
	err   error
	calls [][]anthropic.Turn
}

func (f *fakeAI) GenerateReply(ctx context.Context, system string, turns []anthropic.Turn) (string, error) {
	f.calls = append(f.calls, turns)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestChatService(t *testing.T, sessions *fakeSessionRepo, messages *fakeMessageRepo, leads *fakeLeadRepo, ai anthropic.Client) ChatService {
	t.Helper()
	leadSvc := NewLeadService(nil, testLogger(t), leads, nil)
	return NewChatService(nil, testLogger(t), sessions, messages, leadSvc, ai, "be helpful", "acme")
}

func TestChatTurnWithoutContactInfoDoesNotCreateLead(t *testing.T) {
	sessions := &fakeSessionRepo{}
	messages := &fakeMessageRepo{}
	leads := &fakeLeadRepo{}
	ai := &fakeAI{reply: "happy to help, what's your number?"}
	svc := newTestChatService(t, sessions, messages, leads, ai)

	reply, err := svc.HandleTurn(context.Background(), ChatTurn{
		ExternalSessionID: "widget-1",
		Message:           "do you have slots tomorrow?",
	})
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if reply.Reply != ai.reply {
		t.Fatalf("reply = %q", reply.Reply)
	}
	if reply.LeadID != nil {
		t.Fatal("anonymous turn must not resolve a lead")
	}
	if n, _ := leads.CountByBrand(context.Background(), nil, ""); n != 0 {
		t.Fatalf("lead count = %d, want 0", n)
	}

	// both sides of the exchange persisted
	session, _ := sessions.GetByExternalID(context.Background(), nil, "acme", "widget-1")
	if session == nil {
		t.Fatal("session not created")
	}
	msgs, _ := messages.GetBySessionID(context.Background(), nil, session.ID, 0)
	if len(msgs) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender != types.SenderCustomer || msgs[1].Sender != types.SenderAgent {
		t.Fatalf("message senders = %s/%s", msgs[0].Sender, msgs[1].Sender)
	}
}

func TestChatTurnWithPhoneResolvesAndLinksLead(t *testing.T) {
	sessions := &fakeSessionRepo{}
	messages := &fakeMessageRepo{}
	leads := &fakeLeadRepo{}
	ai := &fakeAI{reply: "got it, we'll call you"}
	svc := newTestChatService(t, sessions, messages, leads, ai)
	ctx := context.Background()

	reply, err := svc.HandleTurn(ctx, ChatTurn{
		ExternalSessionID: "widget-1",
		Message:           "my number is 9876543210",
		CustomerPhone:     sPtr("9876543210"),
	})
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if reply.LeadID == nil {
		t.Fatal("turn with phone must resolve a lead")
	}

	session, _ := sessions.GetByExternalID(ctx, nil, "acme", "widget-1")
	if session.LeadID == nil || *session.LeadID != *reply.LeadID {
		t.Fatalf("session not linked: %v", session.LeadID)
	}

	lead, _ := leads.GetByID(ctx, nil, *reply.LeadID)
	web := lead.UnifiedContext.Data()[types.ChannelWeb]
	if web == nil || web.LastCustomerMessage != "my number is 9876543210" {
		t.Fatalf("web context = %+v", web)
	}
	if web.LastAgentMessage != ai.reply {
		t.Fatalf("last_agent_message = %q", web.LastAgentMessage)
	}
}

func TestChatTurnValidation(t *testing.T) {
	svc := newTestChatService(t, &fakeSessionRepo{}, &fakeMessageRepo{}, &fakeLeadRepo{}, &fakeAI{reply: "x"})

	if _, err := svc.HandleTurn(context.Background(), ChatTurn{Message: "hi"}); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("missing session_id: %v", err)
	}
	if _, err := svc.HandleTurn(context.Background(), ChatTurn{ExternalSessionID: "s"}); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("missing message: %v", err)
	}
}

func TestChatTurnSurfacesAIFailure(t *testing.T) {
	aiErr := errors.New("model unavailable")
	svc := newTestChatService(t, &fakeSessionRepo{}, &fakeMessageRepo{}, &fakeLeadRepo{}, &fakeAI{err: aiErr})

	_, err := svc.HandleTurn(context.Background(), ChatTurn{
		ExternalSessionID: "widget-1",
		Message:           "hello?",
	})
	if !errors.Is(err, aiErr) {
		t.Fatalf("expected AI error to surface, got %v", err)
	}
}

func TestChatSecondTurnReusesSessionAndHistory(t *testing.T) {
	sessions := &fakeSessionRepo{}
	messages := &fakeMessageRepo{}
	leads := &fakeLeadRepo{}
	ai := &fakeAI{reply: "sure"}
	svc := newTestChatService(t, sessions, messages, leads, ai)
	ctx := context.Background()

	if _, err := svc.HandleTurn(ctx, ChatTurn{ExternalSessionID: "w", Message: "first"}); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if _, err := svc.HandleTurn(ctx, ChatTurn{ExternalSessionID: "w", Message: "second"}); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	if len(sessions.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions.sessions))
	}
	if sessions.sessions[0].MessageCount != 4 {
		t.Fatalf("message_count = %d, want 4", sessions.sessions[0].MessageCount)
	}

	// second AI call must see the first exchange in its history
	last := ai.calls[len(ai.calls)-1]
	if len(last) < 3 {
		t.Fatalf("history too short on second turn: %d turns", len(last))
	}
	if last[0].Content != "first" || last[len(last)-1].Content != "second" {
		t.Fatalf("history order wrong: %+v", last)
	}
}
