package eventbus

const (
	TopicModerationEvents = "moderation_events"
	TopicSessionEvents    = "session_events"
	TopicSystemEvents     = "system_events"
)

const (
	TypeBan     = "ban."
	TypeSession = "session."
)

const (
	EventBanIssued           = "ban.issued"
	EventBanLifted           = "ban.lifted"
	EventBanExpired          = "ban.expired"
	EventSessionConnected    = "session.connected"
	EventSessionDisconnected = "session.disconnected"
)
