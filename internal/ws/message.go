package ws

import "encoding/json"

// Server-to-client message type discriminators.
const (
	TypeInitialData = "INITIAL_DATA"
	TypeTankCreate  = "TANK_CREATE"
	TypeTankUpdate  = "TANK_UPDATE"
	TypeTankDelete  = "TANK_DELETE"
)

// Message is the wire envelope for every push message.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DeletePayload carries the id of a removed tank.
type DeletePayload struct {
	ID int64 `json:"id"`
}

// encodeMessage marshals an envelope with the given payload.
func encodeMessage(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Payload: raw})
}
