package websocket

import (
	"encoding/json"
	"fmt"

	"ai-note-taker/internal/domain"
)

// EncodeNote builds the text frame pushed to clients: the note as a bare
// JSON object, one note per message.
func EncodeNote(note *domain.Note) ([]byte, error) {
	if note == nil {
		return nil, fmt.Errorf("nil note")
	}
	return json.Marshal(note)
}
