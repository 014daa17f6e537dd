package entities

import (
	"strings"
	"time"
)

// Affiliation classifies a participant relative to the operating organization
type Affiliation string

const (
	AffiliationInternal Affiliation = "Internal"
	AffiliationExternal Affiliation = "External"
	AffiliationUnknown  Affiliation = "Unknown"
)

// Participant represents a participant in a Gong call
type Participant struct {
	ID           string      `json:"id"`
	EmailAddress string      `json:"emailAddress,omitempty"`
	Name         string      `json:"name,omitempty"`
	Title        string      `json:"title,omitempty"`
	SpeakerID    string      `json:"speakerId,omitempty"`
	Affiliation  Affiliation `json:"affiliation,omitempty"`
	UserID       string      `json:"userId,omitempty"`
}

// CallMetadata holds the metadata block of a Gong call
type CallMetadata struct {
	ID            string     `json:"id"`
	URL           string     `json:"url,omitempty"`
	Title         string     `json:"title,omitempty"`
	Scheduled     *time.Time `json:"scheduled,omitempty"`
	Started       *time.Time `json:"started,omitempty"`
	Duration      int        `json:"duration,omitempty"` // in seconds
	Direction     string     `json:"direction,omitempty"`
	System        string     `json:"system,omitempty"`
	Scope         string     `json:"scope,omitempty"`
	Media         string     `json:"media,omitempty"`
	Language      string     `json:"language,omitempty"`
	PrimaryUserID string     `json:"primaryUserId,omitempty"`
}

// Call is a fully assembled call: metadata, participants, transcript and the
// raw CRM context blobs. Built once by the ingestion pipeline, never mutated
// afterwards.
type Call struct {
	Metadata   CallMetadata        `json:"metaData"`
	Parties    []Participant       `json:"parties,omitempty"`
	Transcript []TranscriptSegment `json:"transcript,omitempty"`
	Context    []map[string]any    `json:"context,omitempty"`
}

// ClientName extracts the client/account name, preferring the Salesforce
// Account context, falling back to the first external participant's email
// domain. Returns "" when neither is available.
func (c *Call) ClientName() string {
	for _, ctx := range c.Context {
		if system, _ := ctx["system"].(string); system != "Salesforce" {
			continue
		}
		objects, _ := ctx["objects"].([]any)
		for _, rawObj := range objects {
			obj, _ := rawObj.(map[string]any)
			if objType, _ := obj["objectType"].(string); objType != "Account" {
				continue
			}
			fields, _ := obj["fields"].([]any)
			for _, rawField := range fields {
				field, _ := rawField.(map[string]any)
				if name, _ := field["name"].(string); name != "Name" {
					continue
				}
				if value, ok := field["value"].(string); ok && value != "" {
					return value
				}
			}
		}
	}

	for _, party := range c.Parties {
		if party.Affiliation == AffiliationExternal && party.EmailAddress != "" {
			domain := party.EmailAddress[strings.LastIndex(party.EmailAddress, "@")+1:]
			company, _, _ := strings.Cut(domain, ".")
			return titleCase(company)
		}
	}

	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ExternalParticipants returns all external participants
func (c *Call) ExternalParticipants() []Participant {
	return c.participantsByAffiliation(AffiliationExternal)
}

// InternalParticipants returns all internal participants
func (c *Call) InternalParticipants() []Participant {
	return c.participantsByAffiliation(AffiliationInternal)
}

func (c *Call) participantsByAffiliation(a Affiliation) []Participant {
	var out []Participant
	for _, p := range c.Parties {
		if p.Affiliation == a {
			out = append(out, p)
		}
	}
	return out
}
