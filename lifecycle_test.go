package gabb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gabbwatch/gabb"
	"github.com/gabbwatch/gabb/gabbtest"
)

// newFakeService starts a fake service and a client wired to it. Tests that
// need seeded state do their own seeding before authenticating.
func newFakeService(t *testing.T) (*gabbtest.Server, *gabb.Client) {
	t.Helper()
	server := gabbtest.NewServer()
	t.Cleanup(server.Close)
	client, err := server.Client()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	return server, client
}

func TestClient_SessionLifecycle(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	server.SeedDevice(gabb.MapDevice{Name: "Riley", Battery: 82, Online: true})
	ctx := context.Background()

	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	snapshot, err := client.Map(ctx)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if len(snapshot.Devices) != 1 || snapshot.Devices[0].Name != "Riley" {
		t.Fatalf("Map() devices = %+v, want one named Riley", snapshot.Devices)
	}

	// Once the service stops honoring the access token, resource calls fail
	// until the caller refreshes. The client never refreshes on its own.
	server.ExpireSessions()
	_, err = client.Map(ctx)
	var expired *gabb.SessionExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("Map() after expiry error = %v, want *SessionExpiredError", err)
	}

	if _, err := client.RefreshSession(ctx); err != nil {
		t.Fatalf("RefreshSession() error = %v", err)
	}
	if _, err := client.Map(ctx); err != nil {
		t.Fatalf("Map() after refresh error = %v", err)
	}
}

func TestClient_RefreshRotatesSession(t *testing.T) {
	t.Parallel()
	_, client := newFakeService(t)
	ctx := context.Background()

	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	before := client.Session()
	after, err := client.RefreshSession(ctx)
	if err != nil {
		t.Fatalf("RefreshSession() error = %v", err)
	}
	if after.AccessToken == before.AccessToken {
		t.Error("RefreshSession() kept the old access token")
	}
	if after.RefreshToken == before.RefreshToken {
		t.Error("RefreshSession() kept the old refresh token")
	}
	if got := client.Session(); got.AccessToken != after.AccessToken {
		t.Errorf("Session() access token = %q, want the refreshed one", got.AccessToken)
	}
}

func TestClient_RevokedSessionNeedsReauth(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	ctx := context.Background()

	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	server.RevokeSessions()

	_, err := client.Events(ctx)
	var expired *gabb.SessionExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("Events() after revocation error = %v, want *SessionExpiredError", err)
	}

	// The refresh token died with the session, so recovery needs a full
	// credential exchange.
	_, err = client.RefreshSession(ctx)
	var authErr *gabb.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("RefreshSession() after revocation error = %v, want *AuthenticationError", err)
	}
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() after revocation error = %v", err)
	}
	if _, err := client.Events(ctx); err != nil {
		t.Fatalf("Events() after re-auth error = %v", err)
	}
}

func TestClient_ReportsAppBuild(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)

	if _, err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got := server.LastAppBuild(); got != gabb.DefaultAppBuild {
		t.Fatalf("login appBuild = %q, want %q", got, gabb.DefaultAppBuild)
	}
}

func TestClient_ContactLifecycle(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	device := server.SeedDevice(gabb.MapDevice{Name: "Riley"})
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	created, err := client.AddContact(ctx, gabb.AddContactParams{
		FirstName:    "Gran",
		LastName:     "Example",
		Phone:        "+15125550143",
		Relationship: "grandparent",
		Devices:      []int64{device.ID},
	})
	if err != nil {
		t.Fatalf("AddContact() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("AddContact() returned contact without an id")
	}

	contacts, err := client.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts() error = %v", err)
	}
	if len(contacts) != 1 || contacts[0].ID != created.ID {
		t.Fatalf("Contacts() = %+v, want the created contact", contacts)
	}

	if err := client.SetEmergencyContact(ctx, device.ID, created.ID); err != nil {
		t.Fatalf("SetEmergencyContact() error = %v", err)
	}
	assignments, err := client.EmergencyContacts(ctx)
	if err != nil {
		t.Fatalf("EmergencyContacts() error = %v", err)
	}
	want := gabb.EmergencyContact{DeviceID: device.ID, ContactID: created.ID}
	if len(assignments) != 1 || assignments[0] != want {
		t.Fatalf("EmergencyContacts() = %+v, want [%+v]", assignments, want)
	}

	// Deleting the contact clears its emergency assignment too.
	if err := client.DeleteContact(ctx, created.ID); err != nil {
		t.Fatalf("DeleteContact() error = %v", err)
	}
	contacts, err = client.Contacts(ctx)
	if err != nil {
		t.Fatalf("Contacts() after delete error = %v", err)
	}
	if len(contacts) != 0 {
		t.Fatalf("Contacts() after delete = %+v, want none", contacts)
	}
	assignments, err = client.EmergencyContacts(ctx)
	if err != nil {
		t.Fatalf("EmergencyContacts() after delete error = %v", err)
	}
	if len(assignments) != 0 {
		t.Fatalf("EmergencyContacts() after delete = %+v, want none", assignments)
	}
}

func TestClient_DeviceProfileAndSettings(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	device := server.SeedDevice(gabb.MapDevice{Name: "Riley", Phone: "+15125550100"})
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	profile, err := client.DeviceProfile(ctx, device.ID)
	if err != nil {
		t.Fatalf("DeviceProfile() error = %v", err)
	}
	if profile.FirstName != "Riley" {
		t.Fatalf("DeviceProfile().FirstName = %q, want Riley", profile.FirstName)
	}

	birthday := time.Date(2016, time.March, 14, 0, 0, 0, 0, time.UTC)
	err = client.UpdateDeviceProfile(ctx, device.ID, gabb.UpdateDeviceProfileParams{
		Gender:    gabb.Int(gabb.GenderFemale),
		BirthDate: gabb.NewMillis(birthday),
	})
	if err != nil {
		t.Fatalf("UpdateDeviceProfile() error = %v", err)
	}
	profile, err = client.DeviceProfile(ctx, device.ID)
	if err != nil {
		t.Fatalf("DeviceProfile() after update error = %v", err)
	}
	if profile.Gender != gabb.GenderFemale {
		t.Errorf("profile.Gender = %d, want %d", profile.Gender, gabb.GenderFemale)
	}
	if !profile.BirthDate.Equal(birthday) {
		t.Errorf("profile.BirthDate = %v, want %v", profile.BirthDate, birthday)
	}
	if profile.FirstName != "Riley" {
		t.Errorf("partial update changed FirstName to %q", profile.FirstName)
	}

	err = client.UpdateDeviceSettings(ctx, device.ID, gabb.UpdateDeviceSettingsParams{
		TrackingInterval: gabb.Int(600),
		SilentMode:       gabb.Bool(true),
	})
	if err != nil {
		t.Fatalf("UpdateDeviceSettings() error = %v", err)
	}
	settings, err := client.DeviceSettings(ctx, device.ID)
	if err != nil {
		t.Fatalf("DeviceSettings() error = %v", err)
	}
	if settings.TrackingInterval != 600 || !settings.SilentMode {
		t.Errorf("settings = %+v, want interval 600 and silent mode on", settings)
	}
	if settings.TrackingStartTime.String() != "06:00" {
		t.Errorf("partial update changed TrackingStartTime to %s", settings.TrackingStartTime)
	}
}

func TestClient_StepGoalRoundTrip(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	device := server.SeedDevice(gabb.MapDevice{Name: "Riley"})
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if err := client.SetStepGoal(ctx, device.ID, 12000); err != nil {
		t.Fatalf("SetStepGoal() error = %v", err)
	}
	goals, err := client.Goals(ctx, device.ID)
	if err != nil {
		t.Fatalf("Goals() error = %v", err)
	}
	if goals.StepGoal != 12000 {
		t.Fatalf("goals.StepGoal = %d, want 12000", goals.StepGoal)
	}
}

func TestClient_MapRefreshTargetsDevice(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	device := server.SeedDevice(gabb.MapDevice{Name: "Riley"})
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if err := client.RefreshMap(ctx, device.ID); err != nil {
		t.Fatalf("RefreshMap() error = %v", err)
	}
	refreshed := server.RefreshedDevices()
	if len(refreshed) != 1 || refreshed[0] != device.ID {
		t.Fatalf("refreshed devices = %v, want [%d]", refreshed, device.ID)
	}

	err := client.RefreshMap(ctx, 424242)
	var reqErr *gabb.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 404 {
		t.Fatalf("RefreshMap(unknown) error = %v, want *RequestError with status 404", err)
	}
}

func TestClient_EventLogLifecycle(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	device := server.SeedDevice(gabb.MapDevice{Name: "Riley"})
	server.SeedEvent(gabb.Event{DeviceID: device.ID, Type: "sos", Message: "SOS triggered"})
	server.SeedEvent(gabb.Event{DeviceID: device.ID, Type: "zone", Message: "Left School"})
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	events, err := client.Events(ctx)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Events() returned %d entries, want 2", len(events))
	}
	count, err := client.EventCount(ctx)
	if err != nil {
		t.Fatalf("EventCount() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("EventCount() = %d, want 2", count)
	}

	if err := client.DeleteEvents(ctx); err != nil {
		t.Fatalf("DeleteEvents() error = %v", err)
	}
	count, err = client.EventCount(ctx)
	if err != nil {
		t.Fatalf("EventCount() after clear error = %v", err)
	}
	if count != 0 {
		t.Fatalf("EventCount() after clear = %d, want 0", count)
	}
}

func TestClient_ScheduleLifecycle(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	device := server.SeedDevice(gabb.MapDevice{Name: "Riley"})
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	params := gabb.LockModeScheduleParams{
		Name:    "School hours",
		Devices: []int64{device.ID},
		Time:    gabb.NewDaySeconds(8, 0, 0),
		EndTime: gabb.NewDaySeconds(15, 30, 0),
		Enabled: true,
	}
	for day := time.Monday; day <= time.Friday; day++ {
		params.WeekDays.Set(day, true)
	}

	created, err := client.CreateLockModeSchedule(ctx, params)
	if err != nil {
		t.Fatalf("CreateLockModeSchedule() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateLockModeSchedule() returned schedule without an id")
	}
	if created.Type != 4 || !created.SchoolMode {
		t.Fatalf("created schedule = %+v, want type 4 with school mode on", created)
	}
	if created.Time != gabb.NewDaySeconds(8, 0, 0) {
		t.Fatalf("created.Time = %v, want 08:00:00", created.Time)
	}

	params.Enabled = false
	if err := client.UpdateLockModeSchedule(ctx, created.ID, params); err != nil {
		t.Fatalf("UpdateLockModeSchedule() error = %v", err)
	}
	schedules, err := client.LockModeSchedules(ctx)
	if err != nil {
		t.Fatalf("LockModeSchedules() error = %v", err)
	}
	if len(schedules) != 1 || schedules[0].Enabled {
		t.Fatalf("LockModeSchedules() = %+v, want one disabled schedule", schedules)
	}
	if !schedules[0].WeekDays.On(time.Wednesday) || schedules[0].WeekDays.On(time.Sunday) {
		t.Fatalf("schedule weekdays = %v, want weekdays only", schedules[0].WeekDays)
	}

	if err := client.DeleteLockModeSchedule(ctx, created.ID); err != nil {
		t.Fatalf("DeleteLockModeSchedule() error = %v", err)
	}
	schedules, err = client.LockModeSchedules(ctx)
	if err != nil {
		t.Fatalf("LockModeSchedules() after delete error = %v", err)
	}
	if len(schedules) != 0 {
		t.Fatalf("LockModeSchedules() after delete = %+v, want none", schedules)
	}
}

func TestClient_SafeZoneLifecycle(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	device := server.SeedDevice(gabb.MapDevice{Name: "Riley"})
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	params := gabb.SafeZoneParams{
		Name:      "School",
		Latitude:  30.2861,
		Longitude: -97.7394,
		Radius:    300,
		Enabled:   true,
		Devices:   []int64{device.ID},
	}
	if err := client.AddSafeZone(ctx, params); err != nil {
		t.Fatalf("AddSafeZone() error = %v", err)
	}

	zones, err := client.SafeZones(ctx)
	if err != nil {
		t.Fatalf("SafeZones() error = %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("SafeZones() returned %d zones, want 1", len(zones))
	}
	zone := zones[0]
	if zone.ID == "" {
		t.Fatal("listed zone has no id")
	}
	// The service quotes the radius; the client reads it back as a number.
	if zone.Radius != 300 {
		t.Fatalf("zone.Radius = %v, want 300", zone.Radius)
	}

	params.Name = "School run"
	if err := client.UpdateSafeZone(ctx, zone.ID, params); err != nil {
		t.Fatalf("UpdateSafeZone() error = %v", err)
	}
	zones, err = client.SafeZones(ctx)
	if err != nil {
		t.Fatalf("SafeZones() after edit error = %v", err)
	}
	if len(zones) != 1 || zones[0].Name != "School run" || zones[0].ID != zone.ID {
		t.Fatalf("SafeZones() after edit = %+v, want renamed zone with same id", zones)
	}

	if err := client.DeleteSafeZone(ctx, zone.ID); err != nil {
		t.Fatalf("DeleteSafeZone() error = %v", err)
	}
	zones, err = client.SafeZones(ctx)
	if err != nil {
		t.Fatalf("SafeZones() after delete error = %v", err)
	}
	if len(zones) != 0 {
		t.Fatalf("SafeZones() after delete = %+v, want none", zones)
	}
}

func TestClient_TodoAndPresetLifecycle(t *testing.T) {
	t.Parallel()
	server, client := newFakeService(t)
	device := server.SeedDevice(gabb.MapDevice{Name: "Riley"})
	todo := server.SeedTodo(gabb.Todo{DeviceID: device.ID, Title: "Feed the dog"})
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	todos, err := client.Todos(ctx)
	if err != nil {
		t.Fatalf("Todos() error = %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "Feed the dog" {
		t.Fatalf("Todos() = %+v, want the seeded task", todos)
	}
	if err := client.DeleteTodo(ctx, device.ID, todo.ID); err != nil {
		t.Fatalf("DeleteTodo() error = %v", err)
	}
	todos, err = client.Todos(ctx)
	if err != nil {
		t.Fatalf("Todos() after delete error = %v", err)
	}
	if len(todos) != 0 {
		t.Fatalf("Todos() after delete = %+v, want none", todos)
	}

	preset, err := client.AddTextPreset(ctx, device.ID, "On my way!")
	if err != nil {
		t.Fatalf("AddTextPreset() error = %v", err)
	}
	if preset.ID == 0 {
		t.Fatal("AddTextPreset() returned preset without an id")
	}
	if err := client.UpdateTextPreset(ctx, device.ID, preset.ID, "Running late"); err != nil {
		t.Fatalf("UpdateTextPreset() error = %v", err)
	}
	presets, err := client.TextPresets(ctx, device.ID)
	if err != nil {
		t.Fatalf("TextPresets() error = %v", err)
	}
	if len(presets) != 1 || presets[0].Message != "Running late" {
		t.Fatalf("TextPresets() = %+v, want the updated preset", presets)
	}
	if err := client.DeleteTextPreset(ctx, device.ID, preset.ID); err != nil {
		t.Fatalf("DeleteTextPreset() error = %v", err)
	}
	presets, err = client.TextPresets(ctx, device.ID)
	if err != nil {
		t.Fatalf("TextPresets() after delete error = %v", err)
	}
	if len(presets) != 0 {
		t.Fatalf("TextPresets() after delete = %+v, want none", presets)
	}
}

func TestClient_UserProfile(t *testing.T) {
	t.Parallel()
	_, client := newFakeService(t)
	ctx := context.Background()
	if _, err := client.Authenticate(ctx); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	profile, err := client.UserProfile(ctx)
	if err != nil {
		t.Fatalf("UserProfile() error = %v", err)
	}
	if profile.Email != gabbtest.DefaultUsername {
		t.Fatalf("profile.Email = %q, want %q", profile.Email, gabbtest.DefaultUsername)
	}
}
