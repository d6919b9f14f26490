package domain

import (
	"encoding/json"
	"strconv"
)

// Attribution is shown by the dashboard card under the item list
const Attribution = "Data is provided by Jellyfin."

// Template is the leading "defaults" entry of a card list. Each line names the
// card fields ($title, $release, ...) rendered in that display slot.
type Template struct {
	TitleDefault string `json:"title_default"`
	Line1Default string `json:"line1_default"`
	Line2Default string `json:"line2_default"`
	Line3Default string `json:"line3_default"`
	Line4Default string `json:"line4_default"`
	Icon         string `json:"icon"`
}

// Runtime is a duration in whole minutes. The zero value is unknown and
// serialises as "" so the card never shows a bogus "0".
type Runtime struct {
	minutes int
	known   bool
}

// RuntimeMinutes returns a known runtime
func RuntimeMinutes(minutes int) Runtime {
	return Runtime{minutes: minutes, known: true}
}

// Minutes returns the runtime and whether it is known
func (r Runtime) Minutes() (int, bool) {
	return r.minutes, r.known
}

// String renders the minutes or "" when unknown
func (r Runtime) String() string {
	if !r.known {
		return ""
	}
	return strconv.Itoa(r.minutes)
}

// MarshalJSON emits an integer, or "" when unknown
func (r Runtime) MarshalJSON() ([]byte, error) {
	if !r.known {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(r.minutes)), nil
}

// UnmarshalJSON accepts an integer or ""
func (r *Runtime) UnmarshalJSON(data []byte) error {
	var minutes int
	if err := json.Unmarshal(data, &minutes); err == nil {
		*r = RuntimeMinutes(minutes)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*r = Runtime{}
		return nil
	}
	minutes, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*r = RuntimeMinutes(minutes)
	return nil
}

// CardEntry is one item rendered by the upcoming-media card.
// Image fields carry a URL (local /local/... path or remote CDN), never bytes.
type CardEntry struct {
	Title          string   `json:"title"`
	Episode        string   `json:"episode,omitempty"`
	Release        string   `json:"release"`
	Number         string   `json:"number,omitempty"`
	Runtime        Runtime  `json:"runtime"`
	Genres         []string `json:"genres,omitempty"`
	Rating         string   `json:"rating,omitempty"`
	Studio         string   `json:"studio,omitempty"`
	Poster         string   `json:"poster,omitempty"`
	Fanart         string   `json:"fanart,omitempty"`
	DeepLink       string   `json:"deep_link"`
	Trailer        string   `json:"trailer"`
	Summary        string   `json:"summary"`
	Airdate        string   `json:"airdate"`
	OfficialRating string   `json:"officialrating,omitempty"`
}

// Card is the formatted payload for one sensor. Defaults is nil when there
// were no records to format.
type Card struct {
	Defaults *Template
	Entries  []CardEntry
}

// IsEmpty returns true if nothing was formatted
func (c Card) IsEmpty() bool {
	return c.Defaults == nil && len(c.Entries) == 0
}

// Data flattens the card into the list shape expected by the dashboard card:
// the defaults template followed by every entry.
func (c Card) Data() []any {
	if c.IsEmpty() {
		return nil
	}
	data := make([]any, 0, len(c.Entries)+1)
	if c.Defaults != nil {
		data = append(data, *c.Defaults)
	}
	for _, entry := range c.Entries {
		data = append(data, entry)
	}
	return data
}

// Attributes is the sensor attribute payload
type Attributes struct {
	Data        []any  `json:"data,omitempty"`
	Attribution string `json:"attribution,omitempty"`
}

// NewAttributes wraps a card; an empty card yields empty attributes
func NewAttributes(card Card) Attributes {
	if card.IsEmpty() {
		return Attributes{}
	}
	return Attributes{Data: card.Data(), Attribution: Attribution}
}
