package event

import (
	"context"
	"encoding/json"
	"testing"
)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope(TypeBadgeAwarded, map[string]interface{}{"user_id": 3})
	if env.ID == "" || env.Type != TypeBadgeAwarded || env.OccurredAt.IsZero() {
		t.Fatalf("envelope: unexpected %+v", env)
	}

	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != TypeBadgeAwarded {
		t.Fatalf("type: want=%s got=%v", TypeBadgeAwarded, decoded["type"])
	}
	if _, ok := decoded["occurred_at"]; !ok {
		t.Fatalf("occurred_at missing from %s", body)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), TypeStatisticsRollup, nil); err != nil {
		t.Fatalf("Nop.Publish: %v", err)
	}
	p.Close()
}
