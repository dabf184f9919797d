package types

import (
	"time"
)

// ChannelContext is the structured per-channel conversation state kept on a
// lead. One sub-object per channel; merged field-by-field, never replaced
// wholesale.
type ChannelContext struct {
	ConversationSummary string            `json:"conversation_summary,omitempty"`
	ExtractedFields     map[string]string `json:"extracted_fields,omitempty"`
	MessageCount        int               `json:"message_count,omitempty"`
	BookingStatus       string            `json:"booking_status,omitempty"`
	BookingDate         string            `json:"booking_date,omitempty"`
	BookingTime         string            `json:"booking_time,omitempty"`
	LastCustomerMessage string            `json:"last_customer_message,omitempty"`
	LastAgentMessage    string            `json:"last_agent_message,omitempty"`
	TranscriptStatus    string            `json:"transcript_status,omitempty"`
	LastInteraction     time.Time         `json:"last_interaction"`
}

// ChannelContextUpdate carries the incoming fields for one channel event.
// Nil pointers mean "not supplied" and leave the stored value untouched.
type ChannelContextUpdate struct {
	ConversationSummary *string
	ExtractedFields     map[string]string
	MessageCount        *int
	BookingStatus       *string
	BookingDate         *string
	BookingTime         *string
	LastCustomerMessage *string
	LastAgentMessage    *string
	TranscriptStatus    *string
}

// UnifiedContext maps channel name to that channel's conversation state.
type UnifiedContext map[Channel]*ChannelContext

// MergeChannel returns a new UnifiedContext with the incoming update coalesced
// onto the given channel's sub-object. Supplied (non-nil) fields replace the
// stored value; omitted fields are preserved. Extracted fields are merged
// key-by-key. Other channels pass through untouched, and last_interaction is
// always stamped to now.
func (uc UnifiedContext) MergeChannel(channel Channel, update ChannelContextUpdate, now time.Time) UnifiedContext {
	merged := make(UnifiedContext, len(uc)+1)
	for ch, cc := range uc {
		merged[ch] = cc
	}

	var cur ChannelContext
	if existing := uc[channel]; existing != nil {
		cur = *existing
	}

	if update.ConversationSummary != nil {
		cur.ConversationSummary = *update.ConversationSummary
	}
	if update.MessageCount != nil {
		cur.MessageCount = *update.MessageCount
	}
	if update.BookingStatus != nil {
		cur.BookingStatus = *update.BookingStatus
	}
	if update.BookingDate != nil {
		cur.BookingDate = *update.BookingDate
	}
	if update.BookingTime != nil {
		cur.BookingTime = *update.BookingTime
	}
	if update.LastCustomerMessage != nil {
		cur.LastCustomerMessage = *update.LastCustomerMessage
	}
	if update.LastAgentMessage != nil {
		cur.LastAgentMessage = *update.LastAgentMessage
	}
	if update.TranscriptStatus != nil {
		cur.TranscriptStatus = *update.TranscriptStatus
	}
	if len(update.ExtractedFields) > 0 {
		fields := make(map[string]string, len(cur.ExtractedFields)+len(update.ExtractedFields))
		for k, v := range cur.ExtractedFields {
			fields[k] = v
		}
		for k, v := range update.ExtractedFields {
			fields[k] = v
		}
		cur.ExtractedFields = fields
	}
	cur.LastInteraction = now

	merged[channel] = &cur
	return merged
}
