package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cursorvault/cursor-vault/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlMessage struct {
	Actor     string `json:"actor"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		line := jsonlMessage{
			Actor:     msg.Actor,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
