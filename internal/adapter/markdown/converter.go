// Package markdown renders assembled calls as Markdown documents.
package markdown

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sderosiaux/gong-to-github/internal/domain/entities"
)

const maxSlugLength = 50

var (
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	slugSpacing  = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts text to a URL-friendly slug
func Slugify(text string) string {
	text = strings.ToLower(text)
	text = nonSlugChars.ReplaceAllString(text, "")
	text = slugSpacing.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

// FormatTimestamp formats milliseconds as [HH:MM:SS] or [MM:SS]
func FormatTimestamp(ms int64) string {
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("[%02d:%02d:%02d]", hours, minutes, seconds)
	}
	return fmt.Sprintf("[%02d:%02d]", minutes, seconds)
}

// FormatDuration formats a duration in seconds in a human-readable way
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}

// speakerName resolves a speaker id to a display name and affiliation
func speakerName(speakerID string, parties []entities.Participant) (string, entities.Affiliation) {
	for _, party := range parties {
		if party.SpeakerID == speakerID {
			name := party.Name
			if name == "" {
				name = party.EmailAddress
			}
			if name == "" {
				name = anonymousSpeaker(speakerID)
			}
			return name, party.Affiliation
		}
	}
	return anonymousSpeaker(speakerID), ""
}

func anonymousSpeaker(speakerID string) string {
	if len(speakerID) > 8 {
		speakerID = speakerID[:8]
	}
	return "Speaker " + speakerID
}

func formatParticipant(p entities.Participant) string {
	name := p.Name
	if name == "" {
		name = p.EmailAddress
	}
	if name == "" {
		name = "Unknown"
	}

	affiliation := "External"
	if p.Affiliation == entities.AffiliationInternal {
		affiliation = "Internal"
	}

	out := fmt.Sprintf("%s (%s)", name, affiliation)
	if p.Title != "" {
		out += " - " + p.Title
	}
	return out
}

// CallToMarkdown converts a call to a Markdown document with YAML frontmatter
func CallToMarkdown(call *entities.Call) string {
	var lines []string

	// YAML frontmatter
	lines = append(lines, "---")
	lines = append(lines, "gong_id: "+call.Metadata.ID)
	if call.Metadata.Started != nil {
		lines = append(lines, "date: "+call.Metadata.Started.Format("2006-01-02T15:04:05Z07:00"))
	}
	if call.Metadata.Duration > 0 {
		lines = append(lines, fmt.Sprintf("duration_seconds: %d", call.Metadata.Duration))
	}
	if call.Metadata.Title != "" {
		// Escape quotes in title for YAML
		safeTitle := strings.ReplaceAll(call.Metadata.Title, `"`, `\"`)
		lines = append(lines, `title: "`+safeTitle+`"`)
	}
	if client := call.ClientName(); client != "" {
		lines = append(lines, "client: "+client)
	}
	if call.Metadata.URL != "" {
		lines = append(lines, "gong_url: "+call.Metadata.URL)
	}
	if call.Metadata.Scope != "" {
		lines = append(lines, "scope: "+call.Metadata.Scope)
	}
	if call.Metadata.System != "" {
		lines = append(lines, "system: "+call.Metadata.System)
	}

	if emails := participantEmails(call.InternalParticipants()); len(emails) > 0 {
		lines = append(lines, "internal_participants: ["+strings.Join(emails, ", ")+"]")
	}
	if emails := participantEmails(call.ExternalParticipants()); len(emails) > 0 {
		lines = append(lines, "external_participants: ["+strings.Join(emails, ", ")+"]")
	}

	lines = append(lines, "---", "")

	title := call.Metadata.Title
	if title == "" {
		title = "Untitled Call"
	}
	lines = append(lines, "# "+title, "")

	if call.Metadata.Started != nil {
		lines = append(lines, "**Date:** "+call.Metadata.Started.Format("2006-01-02 15:04"))
	}
	if call.Metadata.Duration > 0 {
		lines = append(lines, "**Duration:** "+FormatDuration(call.Metadata.Duration))
	}

	if len(call.Parties) > 0 {
		lines = append(lines, "", "**Participants:**")
		// Internal first, then external
		for _, p := range call.InternalParticipants() {
			lines = append(lines, "- "+formatParticipant(p))
		}
		for _, p := range call.ExternalParticipants() {
			lines = append(lines, "- "+formatParticipant(p))
		}
	}

	var metaParts []string
	if call.Metadata.System != "" {
		metaParts = append(metaParts, "**System:** "+call.Metadata.System)
	}
	if call.Metadata.Scope != "" {
		metaParts = append(metaParts, "**Type:** "+call.Metadata.Scope)
	}
	if call.Metadata.Media != "" {
		metaParts = append(metaParts, "**Media:** "+call.Metadata.Media)
	}
	if len(metaParts) > 0 {
		lines = append(lines, "", strings.Join(metaParts, " | "))
	}

	if call.Metadata.URL != "" {
		lines = append(lines, "", fmt.Sprintf("[View in Gong](%s)", call.Metadata.URL))
	}

	if len(call.Transcript) > 0 {
		lines = append(lines, "", "---", "", "## Transcript", "")

		for _, segment := range call.Transcript {
			name, affiliation := speakerName(segment.SpeakerID, call.Parties)
			display := name
			if affiliation == entities.AffiliationExternal {
				display = name + " (Client)"
			}

			for _, sentence := range segment.Sentences {
				timestamp := FormatTimestamp(sentence.StartMs)
				lines = append(lines, fmt.Sprintf("**%s %s:**", timestamp, display))
				lines = append(lines, sentence.Text, "")
			}
		}
	}

	return strings.Join(lines, "\n")
}

func participantEmails(parties []entities.Participant) []string {
	var emails []string
	for _, p := range parties {
		if p.EmailAddress != "" {
			emails = append(emails, p.EmailAddress)
		}
	}
	return emails
}

// GenerateFilename builds the call's markdown filename:
// YYYY-MM-DD-<title-slug>.md
func GenerateFilename(call *entities.Call) string {
	datePrefix := "unknown-date"
	if call.Metadata.Started != nil {
		datePrefix = call.Metadata.Started.Format("2006-01-02")
	}

	title := call.Metadata.Title
	if title == "" {
		title = call.Metadata.ID
	}
	slug := Slugify(title)
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}

	return datePrefix + "-" + slug + ".md"
}

// GenerateClientFolderName builds the slugified client folder for a call
func GenerateClientFolderName(call *entities.Call) string {
	clientName := call.ClientName()

	if clientName == "" {
		clientName = "Unknown-Client"
	}

	return Slugify(clientName)
}

// ClientDisplayName turns a client folder name back into a display name
func ClientDisplayName(folder string) string {
	words := strings.Split(folder, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// GenerateClientIndex builds a client's call-history index page
func GenerateClientIndex(clientName string, calls []entities.Call) string {
	var lines []string

	lines = append(lines, "# "+clientName+" - Call History", "")
	lines = append(lines, fmt.Sprintf("Total calls: %d", len(calls)), "")

	// Newest first
	sorted := make([]entities.Call, len(calls))
	copy(sorted, calls)
	sort.SliceStable(sorted, func(i, j int) bool {
		return startedOrZero(&sorted[i]).After(startedOrZero(&sorted[j]))
	})

	lines = append(lines, "## Calls", "")
	lines = append(lines, "| Date | Title | Duration | Participants |")
	lines = append(lines, "|------|-------|----------|--------------|")

	for i := range sorted {
		call := &sorted[i]

		dateStr := "N/A"
		if call.Metadata.Started != nil {
			dateStr = call.Metadata.Started.Format("2006-01-02")
		}

		title := call.Metadata.Title
		if title == "" {
			title = "Untitled"
		}

		duration := "N/A"
		if call.Metadata.Duration > 0 {
			duration = FormatDuration(call.Metadata.Duration)
		}

		lines = append(lines, fmt.Sprintf("| %s | [%s](./%s) | %s | %d |",
			dateStr, title, GenerateFilename(call), duration, len(call.Parties)))
	}

	return strings.Join(lines, "\n")
}

func startedOrZero(call *entities.Call) time.Time {
	if call.Metadata.Started != nil {
		return *call.Metadata.Started
	}
	return time.Time{}
}
