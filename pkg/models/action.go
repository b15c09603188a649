package models

// ActionType enumerates the side-effecting steps a workflow can perform.
type ActionType string

const (
	ActionSendEmail          ActionType = "SEND_EMAIL"
	ActionSendSMS            ActionType = "SEND_SMS"
	ActionSendChatMessage    ActionType = "SEND_CHAT_MESSAGE"
	ActionCallWebhook        ActionType = "CALL_WEBHOOK"
	ActionWait               ActionType = "WAIT"
	ActionCreateNotification ActionType = "CREATE_NOTIFICATION"
	ActionLog                ActionType = "LOG"
)

// Action is one ordered step of a workflow. Config is the
// action-type-specific data; its string values may carry template
// placeholders resolved at execution time against the run context
// extended with prior actions' outputs.
type Action struct {
	Type   ActionType     `json:"type"   validate:"required"`
	Config map[string]any `json:"config,omitempty"`
	Order  int            `json:"order"  validate:"min=1"`
}
