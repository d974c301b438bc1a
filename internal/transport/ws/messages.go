package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Типы сообщений протокола
const (
	// Входящие
	MessageTypeControl = "control" // газ и руль
	MessageTypeAction  = "action"  // дискретные действия
	MessageTypePing    = "ping"

	// Исходящие
	MessageTypeState = "state" // периодический снимок состояния
	MessageTypeWorld = "world" // описание мира при подключении
	MessageTypeAck   = "ack"   // подтверждение действия
	MessageTypePong  = "pong"
	MessageTypeInfo  = "info"
)

// Действия для ActionMessage
const (
	ActionBurst     = "burst"
	ActionRepair    = "repair"
	ActionAutoDock  = "auto_dock"
	ActionBuildMode = "build_mode"
	ActionRaceStart = "race_start"
)

// ControlMessage - непрерывное управление. Поля-указатели: клиент
// может прислать только газ или только руль.
type ControlMessage struct {
	Type       string   `json:"type"`
	Throttle   *float64 `json:"throttle,omitempty"`
	Steering   *float64 `json:"steering,omitempty"`
	ClientTime float64  `json:"client_time,omitempty"`
}

// ActionMessage - дискретное действие: ускорение, ремонт,
// автовозврат, режим постройки, старт гонки
type ActionMessage struct {
	Type       string   `json:"type"`
	Action     string   `json:"action"`
	Enabled    *bool    `json:"enabled,omitempty"`  // для auto_dock и build_mode
	RouteID    *int     `json:"route_id,omitempty"` // для race_start
	TargetX    *float64 `json:"target_x,omitempty"` // явная цель автовозврата
	TargetZ    *float64 `json:"target_z,omitempty"`
	ClientTime float64  `json:"client_time,omitempty"`
}

// PingMessage - замер задержки
type PingMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
}

// PongMessage - ответ на пинг
type PongMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
	ServerTime int64   `json:"server_time"`
}

// AckMessage - подтверждение действия со статусом ok/rejected
type AckMessage struct {
	Type       string  `json:"type"`
	Action     string  `json:"action"`
	Status     string  `json:"status"`
	ClientTime float64 `json:"client_time"`
	ServerTime int64   `json:"server_time"`
}

// InfoMessage - информационное сообщение клиенту
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GetCurrentServerTime возвращает серверное время в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixMilli()
}

// NewPongMessage создает ответ на пинг
func NewPongMessage(clientTime float64) *PongMessage {
	return &PongMessage{
		Type:       MessageTypePong,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewAckMessage создает подтверждение действия
func NewAckMessage(action, status string, clientTime float64) *AckMessage {
	return &AckMessage{
		Type:       MessageTypeAck,
		Action:     action,
		Status:     status,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewInfoMessage создает информационное сообщение
func NewInfoMessage(message string) *InfoMessage {
	return &InfoMessage{Type: MessageTypeInfo, Message: message}
}

// ParseMessage разбирает входящее сообщение в соответствующий тип
func ParseMessage(data []byte) (interface{}, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	switch baseMessage.Type {
	case MessageTypeControl:
		var msg ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing control message: %w", err)
		}
		return &msg, nil

	case MessageTypeAction:
		var msg ActionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing action message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, errors.New("unknown message type: " + baseMessage.Type)
	}
}
