package gabb

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestTextPresets_RoundTrip(t *testing.T) {
	t.Parallel()

	var gotAdd, gotUpdate map[string]any
	var gotUpdatePath, gotDeletePath string
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/tokk/device/555555/preset" && r.Method == http.MethodGet:
			jsonData(w, []TextPreset{{ID: 1, Message: "On my way"}})
		case r.URL.Path == "/v2/tokk/device/555555/preset" && r.Method == http.MethodPost:
			_ = json.NewDecoder(r.Body).Decode(&gotAdd)
			jsonData(w, TextPreset{ID: 2, Message: "Call me"})
		case r.Method == http.MethodPut:
			gotUpdatePath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotUpdate)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete:
			gotDeletePath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))

	presets, err := c.TextPresets(context.Background(), 555555)
	if err != nil {
		t.Fatalf("TextPresets returned error: %v", err)
	}
	if len(presets) != 1 || presets[0].Message != "On my way" {
		t.Fatalf("presets = %#v", presets)
	}

	created, err := c.AddTextPreset(context.Background(), 555555, "Call me")
	if err != nil {
		t.Fatalf("AddTextPreset returned error: %v", err)
	}
	if created.ID != 2 {
		t.Fatalf("created = %#v, want stored copy with id=2", created)
	}
	// The device id rides in the body as well as the path.
	if gotAdd["deviceId"] != float64(555555) || gotAdd["message"] != "Call me" {
		t.Fatalf("add payload = %v", gotAdd)
	}

	if err := c.UpdateTextPreset(context.Background(), 555555, 2, "Call me back"); err != nil {
		t.Fatalf("UpdateTextPreset returned error: %v", err)
	}
	if gotUpdatePath != "/v2/tokk/device/555555/preset/2" {
		t.Fatalf("update path = %q", gotUpdatePath)
	}
	if gotUpdate["presetId"] != float64(2) || gotUpdate["message"] != "Call me back" {
		t.Fatalf("update payload = %v", gotUpdate)
	}

	if err := c.DeleteTextPreset(context.Background(), 555555, 2); err != nil {
		t.Fatalf("DeleteTextPreset returned error: %v", err)
	}
	if gotDeletePath != "/v2/tokk/device/555555/preset/2" {
		t.Fatalf("delete path = %q", gotDeletePath)
	}
}
