package models

import "strings"

// MatchKind is how a card was summoned in a message body
type MatchKind string

const (
	MatchImage MatchKind = "Image" // [[query]]
	MatchWiki  MatchKind = "Wiki"  // {{query}}
	MatchText  MatchKind = "Text"
)

// ParseMatchKind accepts the kind segment of a control identifier
func ParseMatchKind(s string) (MatchKind, bool) {
	switch MatchKind(s) {
	case MatchImage, MatchWiki, MatchText:
		return MatchKind(s), true
	}
	return "", false
}

// CardRecord is one row of the card catalog. Records are never modified after
// a catalog load; indices hold pointers into the loaded slice.
type CardRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	TitleSuffix string `json:"title_suffix"`
	Nicknames   string `json:"nicknames"` // comma-separated
	Personas    string `json:"personas"`  // comma-separated
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url"`
	WikiURL     string `json:"wiki_url"`
	CollInfo    string `json:"coll_info"` // set + number, e.g. "1U231"
}

// Indexable reports whether the record carries the identifiers required for indexing
func (c *CardRecord) Indexable() bool {
	return strings.TrimSpace(c.ID) != "" && strings.TrimSpace(c.CollInfo) != ""
}

// NicknameList splits the comma-separated nickname column, skipping blanks
func (c *CardRecord) NicknameList() []string {
	return splitList(c.Nicknames)
}

// PersonaList splits the comma-separated persona column, skipping blanks
func (c *CardRecord) PersonaList() []string {
	return splitList(c.Personas)
}

// Label is the "Display Name (1U231)" form used in select options and name replies
func (c *CardRecord) Label() string {
	return c.DisplayName + " (" + c.CollInfo + ")"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}
