package services

import (
	"fmt"
	"strings"

	"github.com/codyseavey/card-linker/internal/models"
)

const notFoundTemplate = "What is `%s`, I wonder? I cannot place it. It does not seem to come in the old lists that I learned when I was young. But that was a long, long time ago, and they may have made new lists."

func deleteButton(requester models.Snowflake, kind models.MatchKind) models.Control {
	return models.Control{
		Type:     models.ControlButton,
		CustomID: ControlID(ActionDelete, requester, kind),
		Label:    "Delete",
		Style:    models.ButtonDanger,
	}
}

func lockInButton(requester models.Snowflake, kind models.MatchKind, disabled bool) models.Control {
	return models.Control{
		Type:     models.ControlButton,
		CustomID: ControlID(ActionLockIn, requester, kind),
		Label:    "Accept",
		Style:    models.ButtonPrimary,
		Disabled: disabled,
	}
}

func wikiLink(card *models.CardRecord) models.Control {
	return models.Control{
		Type:  models.ControlLink,
		Label: "Wiki",
		URL:   card.WikiURL,
	}
}

// buildSingle renders the reply for one card: the image URL (which the
// platform embeds) or the display name for wiki lookups, then the wiki link,
// Accept and Delete
func buildSingle(requester models.Snowflake, card *models.CardRecord, kind models.MatchKind) models.OutboundMessage {
	content := card.ImageURL
	if kind == models.MatchWiki {
		content = card.Label()
	}

	controls := make([]models.Control, 0, 3)
	if card.WikiURL != "" {
		controls = append(controls, wikiLink(card))
	}
	controls = append(controls,
		lockInButton(requester, kind, false),
		deleteButton(requester, kind),
	)

	return models.OutboundMessage{Content: content, Controls: controls}
}

// buildNotFound renders the reply for a query nothing matched. Its Delete
// button is public so anyone can clean it up.
func buildNotFound(query string, kind models.MatchKind) models.OutboundMessage {
	return models.OutboundMessage{
		Content:  fmt.Sprintf(notFoundTemplate, query),
		Controls: []models.Control{deleteButton(0, kind)},
	}
}

// buildCollisions renders the dropdown used to pick between candidates
func buildCollisions(requester models.Snowflake, query string, kind models.MatchKind, candidates []*models.CardRecord) models.OutboundMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Found multiple potential candidates for card image `%s`.", query)
	if len(candidates) > models.MaxSelectOptions {
		fmt.Fprintf(&b, "\nFound %d options.  The top %d are shown below, but you may need to try a more specific query.\n",
			len(candidates), models.MaxSelectOptions)
	}
	b.WriteString("\nSelect your choice from the dropdown below:\n\n")

	shown := candidates
	if len(shown) > models.MaxSelectOptions {
		shown = shown[:models.MaxSelectOptions]
	}
	options := make([]models.SelectOption, 0, len(shown))
	for _, c := range shown {
		options = append(options, models.SelectOption{Label: c.Label(), Value: c.CollInfo})
	}

	return models.OutboundMessage{
		Content: b.String(),
		Controls: []models.Control{
			lockInButton(requester, kind, true),
			deleteButton(requester, kind),
			{
				Type:     models.ControlSelect,
				CustomID: ControlID(ActionSelect, requester, kind),
				Options:  options,
			},
		},
	}
}

// buildResponse picks the reply shape for a resolution
func buildResponse(requester models.Snowflake, req Trigger, res Resolution) models.OutboundMessage {
	switch res.Outcome() {
	case OutcomeNotFound:
		return buildNotFound(req.Query, req.Kind)
	case OutcomeFound:
		return buildSingle(requester, res.Card(), req.Kind)
	}
	return buildCollisions(requester, req.Query, req.Kind, res.Candidates)
}

// linkControls keeps only the static link controls of a message
func linkControls(controls []models.Control) []models.Control {
	var kept []models.Control
	for _, c := range controls {
		if c.CustomID == "" && c.Type == models.ControlLink {
			kept = append(kept, c)
		}
	}
	return kept
}

// selectControl returns the select control of a message, if any
func selectControl(controls []models.Control) (models.Control, bool) {
	for _, c := range controls {
		if c.Type == models.ControlSelect {
			return c, true
		}
	}
	return models.Control{}, false
}
