package internal

import (
	"strings"
	"testing"
	"time"
)

func TestNewNormalizer(t *testing.T) {
	n := NewNormalizer()
	if n == nil {
		t.Error("NewNormalizer() returned nil")
	}
}

func TestNormalizer_NormalizeConversation(t *testing.T) {
	tests := []struct {
		name    string
		conv    *ReconstructedConversation
		wantErr bool
	}{
		{
			name:    "nil conversation",
			conv:    nil,
			wantErr: true,
		},
		{
			name: "empty messages",
			conv: &ReconstructedConversation{
				ComposerID: "composer1",
				Messages:   []ReconstructedMessage{},
			},
			wantErr: true,
		},
		{
			name: "valid conversation",
			conv: &ReconstructedConversation{
				ComposerID: "composer1",
				Name:       "Test",
				Messages: []ReconstructedMessage{
					{BubbleID: "b1", Type: 1, Text: "Hello", Timestamp: 1700000000000},
				},
				CreatedAt: 1700000000000,
				UpdatedAt: 1700000001000,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer()
			got, err := n.NormalizeConversation(tt.conv, "", "")
			if (err != nil) != tt.wantErr {
				t.Errorf("NormalizeConversation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if got.ID != tt.conv.ComposerID {
				t.Errorf("NormalizeConversation() ID = %q, want %q", got.ID, tt.conv.ComposerID)
			}
			if got.Source != "globalStorage" {
				t.Errorf("NormalizeConversation() Source = %q, want globalStorage", got.Source)
			}
			if got.Metadata.MessageCount != len(tt.conv.Messages) {
				t.Errorf("NormalizeConversation() MessageCount = %d, want %d", got.Metadata.MessageCount, len(tt.conv.Messages))
			}
		})
	}
}

func TestNormalizer_NormalizeConversation_Attribution(t *testing.T) {
	conv := &ReconstructedConversation{
		ComposerID: "composer1",
		Messages: []ReconstructedMessage{
			{BubbleID: "b1", Type: 1, Text: "Hello"},
		},
	}

	n := NewNormalizer()
	got, err := n.NormalizeConversation(conv, "my-project", "projectLayouts")
	if err != nil {
		t.Fatalf("NormalizeConversation() error = %v", err)
	}

	if got.Project != "my-project" {
		t.Errorf("NormalizeConversation() Project = %q, want my-project", got.Project)
	}
	if got.Metadata.AttributedBy != "projectLayouts" {
		t.Errorf("NormalizeConversation() AttributedBy = %q, want projectLayouts", got.Metadata.AttributedBy)
	}
}

func TestNormalizer_NormalizeConversation_Unattributed(t *testing.T) {
	conv := &ReconstructedConversation{
		ComposerID: "composer1",
		Messages: []ReconstructedMessage{
			{BubbleID: "b1", Type: 1, Text: "Hello"},
		},
	}

	n := NewNormalizer()
	got, err := n.NormalizeConversation(conv, "", "")
	if err != nil {
		t.Fatalf("NormalizeConversation() error = %v", err)
	}

	if got.Project != "" {
		t.Errorf("NormalizeConversation() Project = %q, want empty", got.Project)
	}
	if got.Metadata.AttributedBy != "" {
		t.Errorf("NormalizeConversation() AttributedBy = %q, want empty", got.Metadata.AttributedBy)
	}
}

func TestNormalizer_NormalizeConversation_Timestamps(t *testing.T) {
	conv := &ReconstructedConversation{
		ComposerID: "composer1",
		Messages: []ReconstructedMessage{
			{BubbleID: "b1", Type: 1, Text: "Hello", Timestamp: 1700000000000},
			{BubbleID: "b2", Type: 2, Text: "Hi", Timestamp: 0},
		},
		CreatedAt: 1700000000000,
	}

	n := NewNormalizer()
	got, err := n.NormalizeConversation(conv, "", "")
	if err != nil {
		t.Fatalf("NormalizeConversation() error = %v", err)
	}

	if got.Messages[0].Timestamp == "" {
		t.Error("message with a timestamp should have it formatted")
	}
	if _, err := time.Parse(time.RFC3339, got.Messages[0].Timestamp); err != nil {
		t.Errorf("message timestamp %q is not RFC3339: %v", got.Messages[0].Timestamp, err)
	}
	if got.Messages[1].Timestamp != "" {
		t.Errorf("message without a timestamp should stay empty, got %q", got.Messages[1].Timestamp)
	}

	if got.Metadata.CreatedAt == "" {
		t.Error("Metadata.CreatedAt should be set")
	}
	if got.Metadata.UpdatedAt != "" {
		t.Errorf("Metadata.UpdatedAt should be empty for zero timestamp, got %q", got.Metadata.UpdatedAt)
	}
}

func TestNormalizer_normalizeActor(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{1, "user"},
		{2, "assistant"},
		{0, "user"},
		{3, "user"},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		if got := n.normalizeActor(tt.input); got != tt.want {
			t.Errorf("normalizeActor(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	got := formatTimestamp(1700000000000)

	parsed, err := time.Parse(time.RFC3339, got)
	if err != nil {
		t.Fatalf("formatTimestamp() output %q is not RFC3339: %v", got, err)
	}
	if parsed.UnixMilli() != 1700000000000 {
		t.Errorf("formatTimestamp() round-trip = %d, want 1700000000000", parsed.UnixMilli())
	}
	if strings.TrimSpace(got) != got {
		t.Errorf("formatTimestamp() has surrounding whitespace: %q", got)
	}
}
