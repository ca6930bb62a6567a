package ws

import (
	"encoding/json"

	"github.com/noteduco342/lanchat-backend/internal/dispatch"
)

func Serialize(msg Message) ([]byte, error) {
	payload, err := ToJson(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedMessage{Type: msg.GetType(), Payload: payload})
}

func Deserialize(jsonBytes []byte) (Message, error) {
	var wrapper SerializedMessage
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}

	return DeserializeSerializedMessage(&wrapper)
}

func DeserializeSerializedMessage(wrapper *SerializedMessage) (Message, error) {
	msg, err := CreateMessage(wrapper.Type, typeRegistry)
	if err != nil {
		return nil, err
	}

	if err := FromJson(wrapper.Payload, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

func hasAck(id json.RawMessage) bool {
	return len(id) > 0 && string(id) != "null"
}

// Handle decodes one inbound frame, runs it and acknowledges it when the
// client tagged it with an ack id. Undecodable frames without an ack id are
// reported through chat:error; other failures without one are only logged.
func Handle(ctx *MessageContext, raw []byte) {
	var wrapper SerializedMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		ctx.Log.Debug("undecodable frame", "error", err)
		_ = ctx.Conn.Send(dispatch.EventChatError, dispatch.ErrorEvent{
			Error: dispatch.ErrInvalidMessage.Message,
			Code:  dispatch.ErrInvalidMessage.Code,
		})
		return
	}

	msg, err := DeserializeSerializedMessage(&wrapper)
	if err != nil {
		ctx.Log.Debug("invalid frame", "type", wrapper.Type, "error", err)
		if hasAck(wrapper.Ack) {
			_ = ctx.Conn.SendAck(wrapper.Ack, failedAck(dispatch.ErrInvalidMessage))
			return
		}
		_ = ctx.Conn.Send(dispatch.EventChatError, dispatch.ErrorEvent{
			Error: dispatch.ErrInvalidMessage.Message,
			Code:  dispatch.ErrInvalidMessage.Code,
		})
		return
	}

	result, err := msg.Process(ctx)
	if err != nil {
		ctx.Log.Debug("event rejected", "type", msg.GetType(), "code", dispatch.CodeOf(err), "error", err)
		result = failedAck(err)
	}
	if hasAck(wrapper.Ack) {
		_ = ctx.Conn.SendAck(wrapper.Ack, result)
	}
}
