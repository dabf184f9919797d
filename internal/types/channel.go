package types

// Channel is the origin of a conversation or contact event.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelVoice    Channel = "voice"
	ChannelSocial   Channel = "social"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelWeb, ChannelWhatsApp, ChannelVoice, ChannelSocial:
		return true
	}
	return false
}

func (c Channel) String() string { return string(c) }

// Sender identifies who produced a message turn.
const (
	SenderCustomer = "customer"
	SenderAgent    = "agent"
	SenderSystem   = "system"
)
