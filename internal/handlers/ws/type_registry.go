package ws

import (
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	RegisterType(&MessageChat{})
	RegisterType(&MessageTyping{})
	RegisterType(&MessageRevoke{})
	RegisterType(&MessageEdit{})
	RegisterType(&MessageRead{})
	RegisterType(&MessagePing{})
}

func RegisterType(msg Message) {
	typeRegistry[msg.GetType()] = reflect.TypeOf(msg).Elem()
}

// GetTypeRegistry returns the type registry for testing
func GetTypeRegistry() map[string]reflect.Type {
	return typeRegistry
}
