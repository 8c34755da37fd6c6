package gabbtest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/gabbwatch/gabb"
)

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, s.contacts)
}

func (s *Server) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var contact gabb.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed contact payload")
		return
	}
	if contact.FirstName == "" || contact.Phone == "" || contact.Relationship == "" || len(contact.Devices) == 0 {
		writeError(w, http.StatusBadRequest, "CONTACT_INVALID", "contact is missing required fields")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	contact.ID = s.nextIDLocked()
	s.contacts = append(s.contacts, contact)
	writeData(w, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	contactID := pathID(r, "contactID")
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.contacts[:0]
	found := false
	for _, contact := range s.contacts {
		if contact.ID == contactID {
			found = true
			continue
		}
		kept = append(kept, contact)
	}
	if !found {
		writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "no such contact")
		return
	}
	s.contacts = kept
	for deviceID, assigned := range s.emergency {
		if assigned == contactID {
			delete(s.emergency, deviceID)
		}
	}
	writeData(w, true)
}

func (s *Server) handleEmergencyContacts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignments := make([]gabb.EmergencyContact, 0, len(s.emergency))
	for deviceID, contactID := range s.emergency {
		assignments = append(assignments, gabb.EmergencyContact{DeviceID: deviceID, ContactID: contactID})
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].DeviceID < assignments[j].DeviceID })
	writeData(w, assignments)
}

func (s *Server) handleSetEmergencyContact(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	var req struct {
		ContactID  int64 `json:"contactId"`
		IsTemplate bool  `json:"isTemplate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed assignment payload")
		return
	}
	if req.IsTemplate {
		writeError(w, http.StatusBadRequest, "TEMPLATE_UNSUPPORTED", "template assignments are not accepted")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	known := false
	for _, contact := range s.contacts {
		if contact.ID == req.ContactID {
			known = true
			break
		}
	}
	if !known {
		writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "no such contact")
		return
	}
	s.emergency[deviceID] = req.ContactID
	writeData(w, true)
}

func (s *Server) handleDeviceProfile(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[deviceID]
	if !ok {
		writeError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", "no such device")
		return
	}
	writeData(w, profile)
}

func (s *Server) handleUpdateDeviceProfile(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	var req struct {
		Gender    *int         `json:"gender"`
		FirstName *string      `json:"firstName"`
		LastName  *string      `json:"lastName"`
		BirthDate *gabb.Millis `json:"birthDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed profile payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[deviceID]
	if !ok {
		writeError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", "no such device")
		return
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.BirthDate != nil {
		profile.BirthDate = *req.BirthDate
	}
	s.profiles[deviceID] = profile
	writeData(w, profile)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.settings[deviceID]
	if !ok {
		writeError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", "no such device")
		return
	}
	writeData(w, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	var req struct {
		ActiveTrackingEnable    *bool           `json:"activeTrackingEnable"`
		ActiveTrackingDuration  *int            `json:"activeTrackingDuration"`
		ActiveTrackingFrequency *int            `json:"activeTrackingFrequency"`
		BatteryPowerSavingMode  *bool           `json:"batteryPowerSavingMode"`
		TrackingEnabled         *bool           `json:"trackingEnabled"`
		TrackingStartTime       *gabb.ClockTime `json:"trackingStartTime"`
		TrackingEndTime         *gabb.ClockTime `json:"trackingEndTime"`
		TrackingInterval        *int            `json:"trackingInterval"`
		SilentMode              *bool           `json:"silentMode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed settings payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.settings[deviceID]
	if !ok {
		writeError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", "no such device")
		return
	}
	if req.ActiveTrackingEnable != nil {
		settings.ActiveTrackingEnable = *req.ActiveTrackingEnable
	}
	if req.ActiveTrackingDuration != nil {
		settings.ActiveTrackingDuration = *req.ActiveTrackingDuration
	}
	if req.ActiveTrackingFrequency != nil {
		settings.ActiveTrackingFrequency = *req.ActiveTrackingFrequency
	}
	if req.BatteryPowerSavingMode != nil {
		settings.BatteryPowerSavingMode = *req.BatteryPowerSavingMode
	}
	if req.TrackingEnabled != nil {
		settings.TrackingEnabled = *req.TrackingEnabled
	}
	if req.TrackingStartTime != nil {
		settings.TrackingStartTime = *req.TrackingStartTime
	}
	if req.TrackingEndTime != nil {
		settings.TrackingEndTime = *req.TrackingEndTime
	}
	if req.TrackingInterval != nil {
		settings.TrackingInterval = *req.TrackingInterval
	}
	if req.SilentMode != nil {
		settings.SilentMode = *req.SilentMode
	}
	s.settings[deviceID] = settings
	writeData(w, settings)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	s.mu.Lock()
	defer s.mu.Unlock()
	goals, ok := s.goals[deviceID]
	if !ok {
		writeError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", "no such device")
		return
	}
	writeData(w, goals)
}

func (s *Server) handleSetStepGoal(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	var req struct {
		StepGoal int `json:"stepGoal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed goal payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	goals, ok := s.goals[deviceID]
	if !ok {
		writeError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", "no such device")
		return
	}
	goals.StepGoal = req.StepGoal
	s.goals[deviceID] = goals
	writeData(w, true)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, gabb.MapSnapshot{Devices: s.devices})
}

func (s *Server) handleRefreshMap(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	s.mu.Lock()
	defer s.mu.Unlock()
	known := false
	for _, device := range s.devices {
		if device.ID == deviceID {
			known = true
			break
		}
	}
	if !known {
		writeError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", "no such device")
		return
	}
	s.refreshed = append(s.refreshed, deviceID)
	writeData(w, true)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, s.events)
}

func (s *Server) handleDeleteEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	writeData(w, true)
}

func (s *Server) handleEventCount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, struct {
		Count int `json:"count"`
	}{Count: len(s.events)})
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, s.user)
}

// scheduleWrite mirrors the TitleCase alarm payload the app sends. Responses
// go back out in the camelCase form reads use.
type scheduleWrite struct {
	gabb.LockModeScheduleParams
	SilentMode bool `json:"SilentMode"`
	Type       int  `json:"Type"`
	SchoolMode bool `json:"SchoolMode"`
	FocusMode  bool `json:"FocusMode"`
}

func decodeScheduleWrite(w http.ResponseWriter, r *http.Request) (scheduleWrite, bool) {
	var req scheduleWrite
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed alarm payload")
		return scheduleWrite{}, false
	}
	if req.Type != 4 {
		writeError(w, http.StatusBadRequest, "ALARM_TYPE", "only lock mode alarms are accepted")
		return scheduleWrite{}, false
	}
	if req.Name == "" || len(req.Devices) == 0 {
		writeError(w, http.StatusBadRequest, "ALARM_INVALID", "alarm is missing required fields")
		return scheduleWrite{}, false
	}
	return req, true
}

func (req scheduleWrite) schedule(id int64) gabb.LockModeSchedule {
	return gabb.LockModeSchedule{
		ID:         id,
		Name:       req.Name,
		WeekDays:   req.WeekDays,
		Devices:    req.Devices,
		Time:       req.Time,
		EndTime:    req.EndTime,
		Enabled:    req.Enabled,
		SilentMode: req.SilentMode,
		Type:       req.Type,
		SchoolMode: req.SchoolMode,
		FocusMode:  req.FocusMode,
	}
}

func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, s.schedules)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScheduleWrite(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule := req.schedule(s.nextIDLocked())
	s.schedules = append(s.schedules, schedule)
	writeData(w, schedule)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID := pathID(r, "scheduleID")
	req, ok := decodeScheduleWrite(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.schedules {
		if existing.ID == scheduleID {
			s.schedules[i] = req.schedule(scheduleID)
			writeData(w, s.schedules[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "ALARM_NOT_FOUND", "no such alarm")
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID := pathID(r, "scheduleID")
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.schedules[:0]
	found := false
	for _, schedule := range s.schedules {
		if schedule.ID == scheduleID {
			found = true
			continue
		}
		kept = append(kept, schedule)
	}
	if !found {
		writeError(w, http.StatusNotFound, "ALARM_NOT_FOUND", "no such alarm")
		return
	}
	s.schedules = kept
	writeData(w, true)
}

func (s *Server) handleTodos(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, s.todos)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID int64 `json:"deviceId"`
		TodoID   int64 `json:"todoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed task payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.todos[:0]
	found := false
	for _, todo := range s.todos {
		if todo.ID == req.TodoID && todo.DeviceID == req.DeviceID {
			found = true
			continue
		}
		kept = append(kept, todo)
	}
	if !found {
		writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "no such task")
		return
	}
	s.todos = kept
	writeData(w, true)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, s.presets[deviceID])
}

func (s *Server) handleAddPreset(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	var req struct {
		DeviceID int64  `json:"deviceId"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed preset payload")
		return
	}
	// The service wants the device id in both the path and the body.
	if req.DeviceID != deviceID {
		writeError(w, http.StatusBadRequest, "DEVICE_MISMATCH", "body deviceId does not match path")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "PRESET_INVALID", "message is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	preset := gabb.TextPreset{ID: s.nextIDLocked(), Message: req.Message}
	s.presets[deviceID] = append(s.presets[deviceID], preset)
	writeData(w, preset)
}

func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	presetID := pathID(r, "presetID")
	var req struct {
		DeviceID int64  `json:"deviceId"`
		PresetID int64  `json:"presetId"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed preset payload")
		return
	}
	if req.DeviceID != deviceID || req.PresetID != presetID {
		writeError(w, http.StatusBadRequest, "DEVICE_MISMATCH", "body ids do not match path")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, preset := range s.presets[deviceID] {
		if preset.ID == presetID {
			s.presets[deviceID][i].Message = req.Message
			writeData(w, s.presets[deviceID][i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "PRESET_NOT_FOUND", "no such preset")
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	deviceID := pathID(r, "deviceID")
	presetID := pathID(r, "presetID")
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.presets[deviceID][:0]
	found := false
	for _, preset := range s.presets[deviceID] {
		if preset.ID == presetID {
			found = true
			continue
		}
		kept = append(kept, preset)
	}
	if !found {
		writeError(w, http.StatusNotFound, "PRESET_NOT_FOUND", "no such preset")
		return
	}
	s.presets[deviceID] = kept
	writeData(w, true)
}

// zoneJSON renders a zone the way the legacy API does, with the radius as a
// quoted decimal.
func zoneJSON(zone gabb.SafeZone) map[string]any {
	return map[string]any{
		"ZoneId":    zone.ID,
		"Name":      zone.Name,
		"Latitude":  zone.Latitude,
		"Longitude": zone.Longitude,
		"Radius":    strconv.FormatFloat(float64(zone.Radius), 'f', 1, 64),
		"Enabled":   zone.Enabled,
		"Devices":   zone.Devices,
	}
}

func (s *Server) handleSafeZones(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	zones := make([]map[string]any, 0, len(s.zones))
	for _, zone := range s.zones {
		zones = append(zones, zoneJSON(zone))
	}
	writeRaw(w, map[string]any{"Zones": zones})
}

func decodeZoneWrite(w http.ResponseWriter, r *http.Request) (gabb.SafeZoneParams, bool) {
	var params gabb.SafeZoneParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed zone payload")
		return gabb.SafeZoneParams{}, false
	}
	if params.Name == "" || len(params.Devices) == 0 {
		writeError(w, http.StatusBadRequest, "ZONE_INVALID", "zone is missing required fields")
		return gabb.SafeZoneParams{}, false
	}
	return params, true
}

func (s *Server) handleAddSafeZone(w http.ResponseWriter, r *http.Request) {
	params, ok := decodeZoneWrite(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	zone := gabb.SafeZone{
		ID:        uuid.NewString(),
		Name:      params.Name,
		Latitude:  params.Latitude,
		Longitude: params.Longitude,
		Radius:    params.Radius,
		Enabled:   params.Enabled,
		Devices:   params.Devices,
	}
	s.zones = append(s.zones, zone)
	writeRaw(w, zoneJSON(zone))
}

func (s *Server) handleEditSafeZone(w http.ResponseWriter, r *http.Request) {
	zoneID := r.URL.Query().Get("zoneId")
	params, ok := decodeZoneWrite(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, zone := range s.zones {
		if zone.ID == zoneID {
			s.zones[i] = gabb.SafeZone{
				ID:        zoneID,
				Name:      params.Name,
				Latitude:  params.Latitude,
				Longitude: params.Longitude,
				Radius:    params.Radius,
				Enabled:   params.Enabled,
				Devices:   params.Devices,
			}
			writeRaw(w, zoneJSON(s.zones[i]))
			return
		}
	}
	writeError(w, http.StatusNotFound, "ZONE_NOT_FOUND", "no such zone")
}

func (s *Server) handleDeleteSafeZone(w http.ResponseWriter, r *http.Request) {
	zoneID := r.URL.Query().Get("zoneId")
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.zones[:0]
	found := false
	for _, zone := range s.zones {
		if zone.ID == zoneID {
			found = true
			continue
		}
		kept = append(kept, zone)
	}
	if !found {
		writeError(w, http.StatusNotFound, "ZONE_NOT_FOUND", "no such zone")
		return
	}
	s.zones = kept
	writeRaw(w, map[string]any{"Success": true})
}
