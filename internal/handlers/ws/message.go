package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/presence"
)

const AckType = "ack"

// Conn is what inbound messages answer through. *Client implements it.
type Conn interface {
	presence.Conn
	SendAck(id json.RawMessage, payload AckPayload) error
}

// MessageContext provides all dependencies needed for message processing
type MessageContext struct {
	User   *models.User
	Conn   Conn
	Engine *dispatch.Engine
	Log    *slog.Logger
}

// Message interface for all inbound WebSocket event types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) (AckPayload, error)
}

// SerializedMessage is the inbound wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Ack     json.RawMessage `json:"ack,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// OutboundFrame is every frame the server writes.
type OutboundFrame struct {
	Type    string          `json:"type"`
	Ack     json.RawMessage `json:"ack,omitempty"`
	Payload interface{}     `json:"payload"`
}

// AckPayload answers one inbound event.
type AckPayload struct {
	OK                bool                    `json:"ok"`
	Error             string                  `json:"error,omitempty"`
	Code              string                  `json:"code,omitempty"`
	ID                uint                    `json:"id,omitempty"`
	Message           *models.MessageResponse `json:"message,omitempty"`
	LastReadMessageID *uint                   `json:"lastReadMessageId,omitempty"`
}

func failedAck(err error) AckPayload {
	return AckPayload{OK: false, Error: dispatch.PublicMessage(err), Code: dispatch.CodeOf(err)}
}

func ToJson(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func FromJson(jsonBytes []byte, msg Message) error {
	if len(jsonBytes) == 0 || string(jsonBytes) == "null" {
		return nil
	}
	return json.Unmarshal(jsonBytes, msg)
}

func CreateMessage(msgType string, typeRegistry map[string]reflect.Type) (Message, error) {
	msgTypeReflect, ok := typeRegistry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}

	instance := reflect.New(msgTypeReflect).Interface()
	return instance.(Message), nil
}
