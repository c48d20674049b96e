package entities

import (
	"encoding/json"
	"time"
)

// KeyPerson is a contact listed under a company on the home page.
type KeyPerson struct {
	Name      string  `json:"name"`
	Role      string  `json:"role,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Email     string  `json:"email,omitempty"`
	SortOrder SortKey `json:"sortOrder"`
}

// KeyPeopleCompany groups key people by company.
type KeyPeopleCompany struct {
	Company   string      `json:"company"`
	SortOrder SortKey     `json:"sortOrder"`
	People    []KeyPerson `json:"people"`
}

// Event carries the event-level content of a payload.
type Event struct {
	Name          string             `json:"name"`
	Header        StringList         `json:"header,omitempty"`
	LogoURL       string             `json:"logoUrl,omitempty"`
	KeyInfo       string             `json:"keyInfo,omitempty"`
	MOMKeyInfo    string             `json:"momKeyInfo,omitempty"`
	KeyPeople     []KeyPeopleCompany `json:"keyPeople,omitempty"`
	ShowKeyInfo   Flag               `json:"showKeyInfo"`
	ShowKeyPeople Flag               `json:"showKeyPeople"`
}

type PayloadData struct {
	ScheduleDetail []Entry `json:"scheduleDetail"`
}

type PayloadGroupMetaDicts struct {
	Date json.RawMessage `json:"date,omitempty"`
}

type PayloadDicts struct {
	GroupMeta PayloadGroupMetaDicts `json:"groupMeta"`
}

// Payload is the schedule document a render request carries.
type Payload struct {
	Data      PayloadData     `json:"data"`
	GroupMeta json.RawMessage `json:"groupMeta,omitempty"`
	Dicts     PayloadDicts    `json:"dicts"`
	Snapshots []Snapshot      `json:"snapshots"`
	Event     Event           `json:"event"`
	Styles    map[string]any  `json:"styles,omitempty"`
	Document  map[string]any  `json:"document,omitempty"`
	Columns   []ColumnDef     `json:"columns,omitempty"`
	ProfileID string          `json:"profileId,omitempty"`
}

// StoredProfile is a raw style document as persisted. It is normalized on
// every read and never rewritten by the renderers.
type StoredProfile struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Document  map[string]any `json:"document" db:"-"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
