package tasks

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestManualIdempotencyKeyIsUnique(t *testing.T) {
	a := ManualIdempotencyKey(7)
	b := ManualIdempotencyKey(7)
	if a == b {
		t.Fatal("manual keys for the same series must differ per trigger")
	}
	if !strings.HasPrefix(a, "manual-7-") {
		t.Fatalf("unexpected key shape %q", a)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	payload := PublishPayload{VideoID: 3, UserID: 9, Platform: "youtube"}
	raw, err := Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded PublishPayload
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != payload {
		t.Fatalf("round trip changed payload: %+v", decoded)
	}
}
