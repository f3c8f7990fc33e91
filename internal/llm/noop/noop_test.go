package noop

import (
	"context"
	"encoding/json"
	"testing"
)

func TestGenerator(t *testing.T) {
	g := New()

	text, err := g.GenerateText(context.Background(), "anything")
	if err != nil || text != Summary {
		t.Fatalf("GenerateText() = %q, %v", text, err)
	}

	raw, err := g.GenerateJSON(context.Background(), "anything")
	if err != nil {
		t.Fatalf("GenerateJSON() error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("expected valid JSON, got %q: %v", raw, err)
	}
	if out["recommendation"] != "HOLD" {
		t.Errorf("expected HOLD, got %v", out["recommendation"])
	}
}
