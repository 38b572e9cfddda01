package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleID accepts both numeric and quoted identifiers, since the
// external service does not guarantee which form dynamic variables take.
type FlexibleID int64

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse id: %w", err)
	}
	*f = FlexibleID(id)
	return nil
}

// TranscriptTurn is one conversational turn from the external voice
// service. Role "user" maps to a user-authored message; any other role
// becomes a system message.
type TranscriptTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Payload is the webhook callback body.
type Payload struct {
	Event string      `json:"type"`
	Data  PayloadData `json:"data"`
}

// PayloadData carries the transcript and routing identifiers.
type PayloadData struct {
	AgentID                          string `json:"agent_id"`
	ConversationInitiationClientData struct {
		DynamicVariables struct {
			UserID FlexibleID `json:"user_id"`
		} `json:"dynamic_variables"`
	} `json:"conversation_initiation_client_data"`
	Transcript []TranscriptTurn `json:"transcript"`
}

// ParsePayload decodes the raw webhook body.
func ParsePayload(body []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}
