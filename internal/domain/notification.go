package domain

import (
	"context"
	"fmt"
	"net/mail"
	"time"
)

// NotificationKind identifies which of the two messages a NotificationMessage is.
type NotificationKind string

const (
	KindOwnerNotification    NotificationKind = "owner_notification"
	KindSenderAcknowledgment NotificationKind = "sender_acknowledgment"
)

// LabeledField is one labeled value in a notification body.
type LabeledField struct {
	Label string
	Value string
}

// NotificationMessage is one outbound email.
type NotificationMessage struct {
	Kind      NotificationKind
	From      mail.Address
	To        mail.Address
	ReplyTo   mail.Address
	Subject   string
	Fields    []LabeledField
	Timestamp time.Time
	TextBody  string
	HTMLBody  string
}

// Relay delivers notification messages. Implementations must be safe for concurrent use.
type Relay interface {
	Submit(ctx context.Context, msg NotificationMessage) error
}

// DispatchStage names the relay call that failed.
type DispatchStage string

const (
	StageCompose              DispatchStage = "compose"
	StageOwnerNotification    DispatchStage = "owner_notification"
	StageSenderAcknowledgment DispatchStage = "sender_acknowledgment"
)

// DispatchReport records which messages the relay accepted.
type DispatchReport struct {
	OwnerNotified       bool `json:"owner_notified"`
	AcknowledgementSent bool `json:"acknowledgement_sent"`
}

// Delivered reports whether both messages were accepted.
func (r DispatchReport) Delivered() bool {
	return r.OwnerNotified && r.AcknowledgementSent
}

// Partial reports the owner-notified, acknowledgment-failed case.
func (r DispatchReport) Partial() bool {
	return r.OwnerNotified && !r.AcknowledgementSent
}

// DispatchError wraps the relay failure that aborted a dispatch.
type DispatchError struct {
	Stage DispatchStage
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.Stage, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Dispatcher sends the owner notification and then the sender acknowledgment.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub SanitizedSubmission) (DispatchReport, error)
}
