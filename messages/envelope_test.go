package messages

import (
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	t.Run("plain content", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"message","user":"agent","content":"hello"}`))
		if err != nil {
			t.Fatal(err)
		}
		if env.Kind() != KindPlain {
			t.Errorf("kind=%v", env.Kind())
		}
		if env.Content != "hello" || env.User != "agent" {
			t.Errorf("env=%+v", env)
		}
	})

	t.Run("widget", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"widget","user":"agent","content":"{\"type\":\"shopify-cart-summary\",\"details\":\"{}\"}"}`))
		if err != nil {
			t.Fatal(err)
		}
		if env.Kind() != KindWidget {
			t.Errorf("kind=%v", env.Kind())
		}
	})

	t.Run("action", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"action","content":"agent_started_thinking"}`))
		if err != nil {
			t.Fatal(err)
		}
		if env.Kind() != KindAction {
			t.Errorf("kind=%v", env.Kind())
		}
		if env.Content != ActionStartedThinking {
			t.Errorf("content=%q", env.Content)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := Decode([]byte(`{"type":`)); err == nil {
			t.Error("expected error for truncated JSON")
		}
	})
}

func TestNewActionEnvelope(t *testing.T) {
	env, err := NewActionEnvelope("add_item_to_cart", map[string]any{"variant_id": 42}, ModalityAudio)
	if err != nil {
		t.Fatal(err)
	}
	if env.Content.Tool != "add_item_to_cart" {
		t.Errorf("tool=%q", env.Content.Tool)
	}
	// Parameters is a JSON string, not a nested object.
	if env.Content.Parameters != `{"variant_id":42}` {
		t.Errorf("parameters=%q", env.Content.Parameters)
	}

	data, err := Encode(env)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"modality":"audio"`) {
		t.Errorf("encoded=%s", data)
	}
	if !strings.Contains(string(data), `\"variant_id\":42`) {
		t.Errorf("parameters not double-encoded: %s", data)
	}
}

func TestNewTextEnvelope(t *testing.T) {
	data, err := Encode(NewTextEnvelope("two large pizzas"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"text","content":"two large pizzas"}`
	if string(data) != want {
		t.Errorf("got=%s want=%s", data, want)
	}
}
