package models

import "time"

// User is a profile from the users collection. Fields keeps the stored document for
// attributes the assistant does not interpret.
type User struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Email      string                 `json:"email,omitempty"`
	Phone      string                 `json:"phone,omitempty"`
	EmailOptIn bool                   `json:"emailOptIn"`
	SMSOptIn   bool                   `json:"smsOptIn"`
	UpdatedAt  *time.Time             `json:"updatedAt,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

func NormalizeUser(id string, raw map[string]interface{}) User {
	u := User{
		ID:        id,
		Name:      firstString(raw, "name", "displayName", "full_name"),
		Email:     firstString(raw, "email", "emailAddress"),
		Phone:     firstString(raw, "phone", "phoneNumber", "phone_number"),
		UpdatedAt: firstTimePtr(raw, "updatedAt", "updated_at"),
		Fields:    raw,
	}
	// opt-outs are explicit; a missing preference means opted in
	u.EmailOptIn = true
	u.SMSOptIn = true
	if prefs, ok := raw["notificationPreferences"].(map[string]interface{}); ok {
		if b, ok := asBool(prefs["email"]); ok {
			u.EmailOptIn = b
		}
		if b, ok := asBool(prefs["sms"]); ok {
			u.SMSOptIn = b
		}
	}
	return u
}

// Notification is an in-app message stored in the notifications collection.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Read      bool                   `json:"read"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt *time.Time             `json:"createdAt,omitempty"`
}

func NormalizeNotification(id string, raw map[string]interface{}) Notification {
	n := Notification{
		ID:        id,
		UserID:    firstString(raw, "userId", "user_id"),
		Type:      firstString(raw, "type"),
		Title:     firstString(raw, "title"),
		Message:   text(raw, "message", "body"),
		Read:      firstBool(raw, "read"),
		CreatedAt: firstTimePtr(raw, "createdAt", "created_at"),
	}
	if data, ok := raw["data"].(map[string]interface{}); ok {
		n.Data = data
	}
	return n
}

// Interaction is one analytics event.
type Interaction struct {
	UserID    string                 `json:"userId"`
	Action    string                 `json:"action"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	UserAgent string                 `json:"userAgent,omitempty"`
	URL       string                 `json:"url,omitempty"`
}

// Document returns the stored shape of the interaction.
func (i Interaction) Document() map[string]interface{} {
	return map[string]interface{}{
		"userId":    i.UserID,
		"action":    i.Action,
		"data":      i.Data,
		"timestamp": i.Timestamp,
		"userAgent": i.UserAgent,
		"url":       i.URL,
	}
}
