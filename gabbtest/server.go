package gabbtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gabbwatch/gabb"
)

// Defaults a fresh Server starts with.
const (
	DefaultUsername = "parent@example.com"
	DefaultPassword = "hunter2"
	DefaultTokenTTL = time.Hour
)

// Server is an in-process fake of the FiLIP service. It issues real looking
// token pairs, enforces the bearer gate on every resource route, and keeps
// its resources in memory so mutations are visible to later reads. Zero
// values are not useful; construct with NewServer.
type Server struct {
	httpServer *httptest.Server

	mu            sync.Mutex
	username      string
	password      string
	tokenTTL      time.Duration
	accessTokens  map[string]time.Time
	refreshTokens map[string]bool
	lastAppBuild  string

	nextID    int64
	contacts  []gabb.Contact
	emergency map[int64]int64
	devices   []gabb.MapDevice
	refreshed []int64
	events    []gabb.Event
	profiles  map[int64]gabb.DeviceProfile
	settings  map[int64]gabb.DeviceSettings
	goals     map[int64]gabb.Goals
	schedules []gabb.LockModeSchedule
	todos     []gabb.Todo
	presets   map[int64][]gabb.TextPreset
	zones     []gabb.SafeZone
	user      gabb.UserProfile
}

// NewServer starts a fake service on a loopback listener. Callers own the
// returned Server and must Close it.
func NewServer() *Server {
	s := &Server{
		username:      DefaultUsername,
		password:      DefaultPassword,
		tokenTTL:      DefaultTokenTTL,
		accessTokens:  map[string]time.Time{},
		refreshTokens: map[string]bool{},
		emergency:     map[int64]int64{},
		profiles:      map[int64]gabb.DeviceProfile{},
		settings:      map[int64]gabb.DeviceSettings{},
		goals:         map[int64]gabb.Goals{},
		presets:       map[int64][]gabb.TextPreset{},
		nextID:        9000,
		user: gabb.UserProfile{
			ID:        1,
			FirstName: "Pat",
			LastName:  "Example",
			Email:     DefaultUsername,
		},
	}
	s.httpServer = httptest.NewServer(s.router())
	return s
}

// Close shuts the listener down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// URL returns the base URL to hand to gabb.Config.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Client builds a gabb.Client pointed at the fake with matching credentials.
func (s *Server) Client() (*gabb.Client, error) {
	s.mu.Lock()
	username, password := s.username, s.password
	s.mu.Unlock()
	return gabb.New(gabb.Config{
		Username: username,
		Password: password,
		BaseURL:  s.URL(),
	})
}

// SetCredentials changes the account the fake accepts.
func (s *Server) SetCredentials(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username, s.password = username, password
}

// SetTokenTTL changes the lifetime stamped on newly issued access tokens.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = ttl
}

// ExpireSessions backdates every live access token so the next resource call
// is rejected. Refresh tokens stay valid.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.accessTokens {
		s.accessTokens[token] = time.Now().Add(-time.Minute)
	}
}

// RevokeSessions invalidates every access and refresh token, forcing a full
// re-authentication.
func (s *Server) RevokeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens = map[string]time.Time{}
	s.refreshTokens = map[string]bool{}
}

// LastAppBuild reports the appBuild value from the most recent credential
// exchange.
func (s *Server) LastAppBuild() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAppBuild
}

// RefreshedDevices reports which device ids received a map refresh request,
// in order.
func (s *Server) RefreshedDevices() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.refreshed))
	copy(out, s.refreshed)
	return out
}

func (s *Server) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

// SeedDevice registers a device, assigning an id when absent, and backfills
// a profile, settings and goals entry so every per-device route answers.
func (s *Server) SeedDevice(device gabb.MapDevice) gabb.MapDevice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if device.ID == 0 {
		device.ID = s.nextIDLocked()
	}
	s.devices = append(s.devices, device)
	if _, ok := s.profiles[device.ID]; !ok {
		s.profiles[device.ID] = gabb.DeviceProfile{ID: device.ID, FirstName: device.Name, Phone: device.Phone}
	}
	if _, ok := s.settings[device.ID]; !ok {
		s.settings[device.ID] = gabb.DeviceSettings{
			TrackingEnabled:   true,
			TrackingStartTime: gabb.ClockTime{Hour: 6},
			TrackingEndTime:   gabb.ClockTime{Hour: 21},
			TrackingInterval:  900,
		}
	}
	if _, ok := s.goals[device.ID]; !ok {
		s.goals[device.ID] = gabb.Goals{StepGoal: 10000}
	}
	return device
}

// SeedContact registers a contact, assigning an id when absent.
func (s *Server) SeedContact(contact gabb.Contact) gabb.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contact.ID == 0 {
		contact.ID = s.nextIDLocked()
	}
	s.contacts = append(s.contacts, contact)
	return contact
}

// SeedEvent appends an event log entry, assigning an id when absent.
func (s *Server) SeedEvent(event gabb.Event) gabb.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == 0 {
		event.ID = s.nextIDLocked()
	}
	s.events = append(s.events, event)
	return event
}

// SeedTodo registers a task, assigning an id when absent.
func (s *Server) SeedTodo(todo gabb.Todo) gabb.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if todo.ID == 0 {
		todo.ID = s.nextIDLocked()
	}
	s.todos = append(s.todos, todo)
	return todo
}

// SeedSafeZone registers a zone, assigning a uuid when absent.
func (s *Server) SeedSafeZone(zone gabb.SafeZone) gabb.SafeZone {
	s.mu.Lock()
	defer s.mu.Unlock()
	if zone.ID == "" {
		zone.ID = uuid.NewString()
	}
	s.zones = append(s.zones, zone)
	return zone
}

func (s *Server) router() http.Handler {
	protect := func(h http.HandlerFunc) http.Handler {
		return s.requireToken(h)
	}

	r := mux.NewRouter()

	r.Path("/v2/sso/gabb").Methods(http.MethodPost).HandlerFunc(s.handleLogin)
	r.Path("/v2/token/refresh").Methods(http.MethodPost).HandlerFunc(s.handleRefresh)

	r.Path("/v2/contact").Methods(http.MethodGet).Handler(protect(s.handleContacts))
	r.Path("/v2/contact").Methods(http.MethodPost).Handler(protect(s.handleAddContact))
	r.Path("/v2/contact/emergency").Methods(http.MethodGet).Handler(protect(s.handleEmergencyContacts))
	r.Path("/v2/contact/emergency/{deviceID:[0-9]+}").Methods(http.MethodPut).Handler(protect(s.handleSetEmergencyContact))
	r.Path("/v2/contact/{contactID:[0-9]+}").Methods(http.MethodDelete).Handler(protect(s.handleDeleteContact))

	r.Path("/v2/device/profile/{deviceID:[0-9]+}").Methods(http.MethodGet).Handler(protect(s.handleDeviceProfile))
	r.Path("/v2/device/update-profile/{deviceID:[0-9]+}").Methods(http.MethodPut).Handler(protect(s.handleUpdateDeviceProfile))
	r.Path("/v2/device/goals/{deviceID:[0-9]+}").Methods(http.MethodGet).Handler(protect(s.handleGoals))
	r.Path("/v2/device/goals/{deviceID:[0-9]+}").Methods(http.MethodPost).Handler(protect(s.handleSetStepGoal))

	r.Path("/v2/map").Methods(http.MethodGet).Handler(protect(s.handleMap))
	r.Path("/v2/map/refresh/{deviceID:[0-9]+}").Methods(http.MethodPost).Handler(protect(s.handleRefreshMap))

	r.Path("/v2/eventlogs").Methods(http.MethodGet).Handler(protect(s.handleEvents))
	r.Path("/v2/eventlogs").Methods(http.MethodDelete).Handler(protect(s.handleDeleteEvents))
	r.Path("/v2/eventlogs/count").Methods(http.MethodGet).Handler(protect(s.handleEventCount))

	r.Path("/v2/settings/{deviceID:[0-9]+}").Methods(http.MethodGet).Handler(protect(s.handleSettings))
	r.Path("/v2/settings/{deviceID:[0-9]+}").Methods(http.MethodPut).Handler(protect(s.handleUpdateSettings))

	r.Path("/v2/user/profile").Methods(http.MethodGet).Handler(protect(s.handleUserProfile))

	r.Path("/v2/alarms").Methods(http.MethodGet).Handler(protect(s.handleSchedules))
	r.Path("/v2/alarms").Methods(http.MethodPost).Handler(protect(s.handleCreateSchedule))
	r.Path("/v2/alarms/{scheduleID:[0-9]+}").Methods(http.MethodPut).Handler(protect(s.handleUpdateSchedule))
	r.Path("/v2/alarms/{scheduleID:[0-9]+}").Methods(http.MethodDelete).Handler(protect(s.handleDeleteSchedule))

	r.Path("/v2/todo").Methods(http.MethodGet).Handler(protect(s.handleTodos))
	r.Path("/v2/todo").Methods(http.MethodDelete).Handler(protect(s.handleDeleteTodo))

	r.Path("/v2/tokk/device/{deviceID:[0-9]+}/preset").Methods(http.MethodGet).Handler(protect(s.handlePresets))
	r.Path("/v2/tokk/device/{deviceID:[0-9]+}/preset").Methods(http.MethodPost).Handler(protect(s.handleAddPreset))
	r.Path("/v2/tokk/device/{deviceID:[0-9]+}/preset/{presetID:[0-9]+}").Methods(http.MethodPut).Handler(protect(s.handleUpdatePreset))
	r.Path("/v2/tokk/device/{deviceID:[0-9]+}/preset/{presetID:[0-9]+}").Methods(http.MethodDelete).Handler(protect(s.handleDeletePreset))

	// The legacy zone API sits outside /v2 and mutates through POST only.
	r.Path("/safezone/list").Methods(http.MethodGet).Handler(protect(s.handleSafeZones))
	r.Path("/safezone/add").Methods(http.MethodPost).Handler(protect(s.handleAddSafeZone))
	r.Path("/safezone/edit").Methods(http.MethodPost).Handler(protect(s.handleEditSafeZone))
	r.Path("/safezone/delete").Methods(http.MethodPost).Handler(protect(s.handleDeleteSafeZone))

	return r
}

// requireToken is the bearer gate every resource route sits behind.
func (s *Server) requireToken(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "missing bearer token")
			return
		}
		s.mu.Lock()
		expiry, known := s.accessTokens[token]
		s.mu.Unlock()
		if !known {
			writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "unknown access token")
			return
		}
		if !expiry.After(time.Now()) {
			writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "access token expired")
			return
		}
		next(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AppBuild string `json:"appBuild"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed login payload")
		return
	}
	s.mu.Lock()
	s.lastAppBuild = req.AppBuild
	ok := req.Username == s.username && req.Password == s.password
	s.mu.Unlock()
	if req.AppBuild == "" {
		writeError(w, http.StatusBadRequest, "APP_BUILD_REQUIRED", "appBuild missing")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
		return
	}
	s.issueTokens(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed refresh payload")
		return
	}
	s.mu.Lock()
	ok := s.refreshTokens[req.RefreshToken]
	if ok {
		delete(s.refreshTokens, req.RefreshToken)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "REFRESH_INVALID", "unknown refresh token")
		return
	}
	s.issueTokens(w)
}

// issueTokens mints a fresh pair and answers in the service's envelope.
func (s *Server) issueTokens(w http.ResponseWriter) {
	access := uuid.NewString()
	refresh := uuid.NewString()
	s.mu.Lock()
	expiry := time.Now().Add(s.tokenTTL)
	s.accessTokens[access] = expiry
	s.refreshTokens[refresh] = true
	s.mu.Unlock()
	writeData(w, map[string]string{
		"accessToken":  access,
		"refreshToken": refresh,
		"expDate":      expiry.UTC().Format(time.RFC3339),
	})
}

// pathID reads a numeric route variable. The route patterns only admit
// digits, so parse failures cannot happen.
func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// writeRaw answers without the data envelope, the way the legacy zone API
// does.
func writeRaw(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}
