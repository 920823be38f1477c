package security

import "go.uber.org/zap/zapcore"

// Severity represents the severity level of a security event
// This is derived from EventType, NOT caller-provided
type Severity string

const (
	SeverityINFO   Severity = "INFO"
	SeverityMEDIUM Severity = "MEDIUM"
	SeverityWARN   Severity = "WARN"
	SeverityHIGH   Severity = "HIGH"
)

// EventSeverityMap defines the hard-coded severity for each event type
var EventSeverityMap = map[EventType]Severity{
	// WARN - visitor behaviour worth watching
	EventRateLimitTriggered: SeverityWARN,
	EventValidationFailed:   SeverityWARN,

	// MEDIUM - degraded but serving
	EventRateLimitDegraded: SeverityMEDIUM,

	// HIGH - a visitor saw a failure
	EventDispatchFailed: SeverityHIGH,
	EventPanicRecovered: SeverityHIGH,
}

// GetSeverity returns the severity for an event type
// If the event type is not mapped, defaults to MEDIUM
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

// zapLevel maps severity onto the log level the event is written at.
func zapLevel(severity Severity) zapcore.Level {
	switch severity {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
