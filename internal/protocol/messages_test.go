package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageCustomerMessage(t *testing.T) {
	raw := []byte(`{"type":"customer_message","text":"my app is broken"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	if msg.Text != "my app is broken" {
		t.Fatalf("Text = %q", msg.Text)
	}
}

func TestParseClientMessageRejectsEmptyText(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"customer_message","text":"  "}`)); err == nil {
		t.Fatalf("expected error for empty text")
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsGarbage(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid envelope")
	}
}
