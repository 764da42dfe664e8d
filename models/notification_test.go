package models

import "testing"

func TestApplyDefaultsFillsEmptyFields(t *testing.T) {
	n := Notification{Type: NotificationTypePriceOffer}
	n.ApplyDefaults()

	if n.Priority != PriorityHigh {
		t.Errorf("priority = %q, want high", n.Priority)
	}
	if n.Title != "Price Offer Received" {
		t.Errorf("title = %q, want default", n.Title)
	}
	if !n.ActionRequired {
		t.Error("price offer should be action-required by default")
	}
	if len(n.Actions) != 4 {
		t.Errorf("actions = %d, want 4", len(n.Actions))
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	n := Notification{
		Type:     NotificationTypeMessage,
		Title:    "Custom title",
		Message:  "Custom body",
		Priority: PriorityUrgent,
	}
	n.ApplyDefaults()

	if n.Title != "Custom title" || n.Message != "Custom body" {
		t.Error("explicit title/message should not be overwritten")
	}
	if n.Priority != PriorityUrgent {
		t.Errorf("priority = %q, want explicit urgent", n.Priority)
	}
}

func TestApplyDefaultsUnknownType(t *testing.T) {
	n := Notification{Type: "something_new"}
	n.ApplyDefaults()

	if n.Priority != PriorityLow {
		t.Errorf("unknown type priority = %q, want low (system fallback)", n.Priority)
	}
	if n.Title != "System Notification" {
		t.Errorf("unknown type title = %q, want system fallback", n.Title)
	}
	if n.ActionRequired {
		t.Error("unknown type should not be action-required")
	}
}
