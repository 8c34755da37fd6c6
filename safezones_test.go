package gabb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestSafeZones_UsesBareBaseAndTitleCase(t *testing.T) {
	t.Parallel()

	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/safezone/list" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Zones": []map[string]any{{
				"ZoneId":    "zone-1",
				"Name":      "Home",
				"Latitude":  48.516291,
				"Longitude": -80.482364,
				"Radius":    "150.0",
				"Enabled":   true,
				"Devices":   []int64{555555},
			}},
		})
	}))

	zones, err := c.SafeZones(context.Background())
	if err != nil {
		t.Fatalf("SafeZones returned error: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("zones = %#v, want one zone", zones)
	}
	zone := zones[0]
	if zone.ID != "zone-1" || zone.Name != "Home" || !zone.Enabled {
		t.Fatalf("zone = %#v", zone)
	}
	if zone.Radius != 150 {
		t.Fatalf("Radius = %v, want 150 decoded from quoted string", zone.Radius)
	}
}

func TestAddSafeZone_TitleCasePayload(t *testing.T) {
	t.Parallel()

	var got map[string]any
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/safezone/add" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))

	err := c.AddSafeZone(context.Background(), SafeZoneParams{
		Name:      "Home",
		Latitude:  48.516291,
		Longitude: -80.482364,
		Radius:    150,
		Enabled:   true,
		Devices:   []int64{555555},
	})
	if err != nil {
		t.Fatalf("AddSafeZone returned error: %v", err)
	}
	for _, key := range []string{"Name", "Latitude", "Longitude", "Radius", "Enabled", "Devices"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("payload missing %q: %v", key, got)
		}
	}
	if got["Radius"] != float64(150) {
		t.Fatalf("Radius = %v, want plain number on the wire", got["Radius"])
	}
}

func TestUpdateSafeZone_ZoneIDInQuery(t *testing.T) {
	t.Parallel()

	var gotQuery, gotPath string
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.Query().Get("zoneId")
		w.WriteHeader(http.StatusOK)
	}))

	params := SafeZoneParams{Name: "Home", Radius: 150, Devices: []int64{555555}}
	if err := c.UpdateSafeZone(context.Background(), "zone-1", params); err != nil {
		t.Fatalf("UpdateSafeZone returned error: %v", err)
	}
	if gotPath != "/safezone/edit" || gotQuery != "zone-1" {
		t.Fatalf("request = %s zoneId=%q, want /safezone/edit zoneId=zone-1", gotPath, gotQuery)
	}
}

func TestDeleteSafeZone_ZoneIDInQuery(t *testing.T) {
	hits := 0
	var gotMethod, gotQuery string
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		gotMethod, gotQuery = r.Method, r.URL.Query().Get("zoneId")
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.DeleteSafeZone(context.Background(), "zone-1"); err != nil {
		t.Fatalf("DeleteSafeZone returned error: %v", err)
	}
	// Deletion goes through POST; the legacy zone API has no DELETE verb.
	if gotMethod != http.MethodPost || gotQuery != "zone-1" {
		t.Fatalf("request = %s zoneId=%q, want POST zoneId=zone-1", gotMethod, gotQuery)
	}

	err := c.DeleteSafeZone(context.Background(), "")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v (%T), want *ValidationError for empty zone id", err, err)
	}
	if hits != 1 {
		t.Fatalf("server hits = %d, want 1 (empty id never sent)", hits)
	}
}

func TestSafeZoneParams_Validation(t *testing.T) {
	c := authedClient(t, http.NotFoundHandler())

	err := c.AddSafeZone(context.Background(), SafeZoneParams{
		Name:     "Nowhere",
		Latitude: 95,
		Devices:  []int64{555555},
	})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("AddSafeZone error = %v (%T), want *ValidationError", err, err)
	}
	if _, ok := valErr.Fields["Latitude"]; !ok {
		t.Fatalf("Fields missing Latitude: %v", valErr.Fields)
	}
}
