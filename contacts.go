package gabb

import (
	"context"
	"fmt"
	"net/http"
)

// Contact is an address book entry shared across the account's devices.
type Contact struct {
	ID                   int64   `json:"id"`
	FirstName            string  `json:"firstName"`
	LastName             string  `json:"lastName"`
	Phone                string  `json:"phone"`
	Relationship         string  `json:"relationship"`
	Photo                string  `json:"photo"`
	Emergency            bool    `json:"emergency"`
	Guest                bool    `json:"guest"`
	GuestPrimaryAccess   bool    `json:"guestPrimaryAccess"`
	EnableChatSchoolMode bool    `json:"enableChatSchoolMode"`
	Devices              []int64 `json:"devices"`
}

// AddContactParams describes a contact to create. Phone must be in full
// international format.
type AddContactParams struct {
	FirstName            string  `json:"firstName" validate:"required"`
	LastName             string  `json:"lastName" validate:"required"`
	Phone                string  `json:"phone" validate:"required,e164"`
	Relationship         string  `json:"relationship" validate:"required"`
	Devices              []int64 `json:"devices" validate:"required,min=1"`
	Photo                string  `json:"photo"`
	Emergency            bool    `json:"emergency"`
	EnableChatSchoolMode bool    `json:"enableChatSchoolMode"`
	Guest                bool    `json:"guest"`
	GuestPrimaryAccess   bool    `json:"guestPrimaryAccess"`
}

// EmergencyContact ties a device to the contact its SOS flow dials.
type EmergencyContact struct {
	DeviceID  int64 `json:"deviceId"`
	ContactID int64 `json:"contactId"`
}

// Contacts returns every contact on the account.
func (c *Client) Contacts(ctx context.Context) ([]Contact, error) {
	var env envelope[[]Contact]
	if err := c.do(ctx, http.MethodGet, "contact", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// AddContact creates a contact and returns the stored copy.
func (c *Client) AddContact(ctx context.Context, params AddContactParams) (*Contact, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	var env envelope[Contact]
	if err := c.do(ctx, http.MethodPost, "contact", nil, params, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteContact removes a contact from the account.
func (c *Client) DeleteContact(ctx context.Context, contactID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("contact/%d", contactID), nil, nil, nil)
}

// EmergencyContacts reports which contact each device treats as its
// emergency contact.
func (c *Client) EmergencyContacts(ctx context.Context) ([]EmergencyContact, error) {
	var env envelope[[]EmergencyContact]
	if err := c.do(ctx, http.MethodGet, "contact/emergency", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// SetEmergencyContact points a device's SOS flow at the given contact.
func (c *Client) SetEmergencyContact(ctx context.Context, deviceID, contactID int64) error {
	payload := struct {
		ContactID  int64 `json:"contactId"`
		IsTemplate bool  `json:"isTemplate"`
	}{ContactID: contactID}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("contact/emergency/%d", deviceID), nil, payload, nil)
}
