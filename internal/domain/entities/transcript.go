package entities

import "encoding/json"

// Sentence is a single sentence in a transcript segment
type Sentence struct {
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
	Text    string `json:"text"`
}

// UnmarshalJSON accepts both the documented startMs/endMs field names and the
// short start/end variants some transcript payloads use.
func (s *Sentence) UnmarshalJSON(data []byte) error {
	var aux struct {
		StartMs *int64 `json:"startMs"`
		Start   *int64 `json:"start"`
		EndMs   *int64 `json:"endMs"`
		End     *int64 `json:"end"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.StartMs != nil:
		s.StartMs = *aux.StartMs
	case aux.Start != nil:
		s.StartMs = *aux.Start
	}
	switch {
	case aux.EndMs != nil:
		s.EndMs = *aux.EndMs
	case aux.End != nil:
		s.EndMs = *aux.End
	}
	s.Text = aux.Text
	return nil
}

// TranscriptSegment represents one speaker turn. Sentence order reflects
// speaking order and must never be re-sorted.
type TranscriptSegment struct {
	SpeakerID string     `json:"speakerId"`
	Sentences []Sentence `json:"sentences"`
}

// CallTranscript is the transcript payload for a single call
type CallTranscript struct {
	CallID     string              `json:"callId"`
	Transcript []TranscriptSegment `json:"transcript"`
}
