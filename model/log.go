package model

// LogStatusFailed is the only status written to the log table.
const LogStatusFailed = "failed"

// LogRecord is the persisted audit entry of a failing outcome.
type LogRecord struct {
	ID        string `dynamodbav:"id" json:"id"`
	CheckID   string `dynamodbav:"check_id" json:"check_id"`
	CheckName string `dynamodbav:"check_name" json:"check_name"`
	Timestamp string `dynamodbav:"timestamp" json:"timestamp"`
	Version   string `dynamodbav:"version" json:"version"`
	Module    string `dynamodbav:"module" json:"module"`
	Muted     bool   `dynamodbav:"muted" json:"muted"`
	Status    string `dynamodbav:"status" json:"status"`
	Message   string `dynamodbav:"message" json:"message"`
}

// Message is a compiled notification.
type Message struct {
	Subject  string
	BodyText string
	BodyHTML string
	Sections int
}

// Template is the set of text fragments used to render one report section.
type Template struct {
	BodyText    string
	BodyHTML    string
	ItemText    string
	ItemHTML    string
	Title       string
	Description string
}
