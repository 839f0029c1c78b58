package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/codyseavey/card-linker/internal/metrics"
	"github.com/codyseavey/card-linker/internal/models"
)

// deleteReaction is the legacy way to remove a response before buttons existed
const deleteReaction = "❌"

// Messenger is the outbound side of the chat platform
type Messenger interface {
	SendMessage(ctx context.Context, channelID models.Snowflake, msg models.OutboundMessage) (models.Snowflake, error)
	EditMessage(ctx context.Context, channelID, messageID models.Snowflake, msg models.OutboundMessage) error
	DeleteMessage(ctx context.Context, channelID, messageID models.Snowflake) error
	// UpdateInteraction answers a component interaction. A nil msg
	// acknowledges without changing the message.
	UpdateInteraction(ctx context.Context, interactionID models.Snowflake, token string, msg *models.OutboundMessage) error
}

// Linker turns chat events into card responses. It finds triggers in
// messages, resolves them against the active catalog, keeps one session per
// triggering message and applies control interactions to the responses.
type Linker struct {
	catalog   *CatalogService
	sessions  *SessionManager
	messenger Messenger
	misses    MissRecorder
	botUserID models.Snowflake
}

func NewLinker(catalog *CatalogService, sessions *SessionManager, messenger Messenger, misses MissRecorder, botUserID models.Snowflake) *Linker {
	return &Linker{
		catalog:   catalog,
		sessions:  sessions,
		messenger: messenger,
		misses:    misses,
		botUserID: botUserID,
	}
}

// HandleMessageCreated responds to every trigger in a new message
func (l *Linker) HandleMessageCreated(ctx context.Context, ev models.MessageEvent) error {
	// Never answer our own responses. Without a configured bot ID we cannot
	// tell ours apart, so every bot-authored message is ignored.
	if ev.Message.Author.Bot && (l.botUserID == 0 || ev.Message.Author.ID == l.botUserID) {
		return nil
	}
	return l.checkForSummons(ctx, ev.Message, false)
}

// HandleMessageEdited re-resolves the triggers of an edited message, updating
// the responses already posted for it
func (l *Linker) HandleMessageEdited(ctx context.Context, ev models.MessageEvent) error {
	if ev.Message.Author.Bot {
		return nil
	}
	return l.checkForSummons(ctx, ev.Message, true)
}

func (l *Linker) checkForSummons(ctx context.Context, msg models.Message, edit bool) error {
	triggers := ExtractTriggers(msg.Content)
	if len(triggers) == 0 {
		// Ordinary chatter doubles as the purge clock
		l.sessions.MaybePurge()
		return nil
	}

	bundle, err := l.catalog.Ready(ctx)
	if err != nil {
		if errors.Is(err, ErrCatalogLoading) || errors.Is(err, ErrNoCatalog) {
			log.Printf("Linker: dropping message %s: %v", msg.ID, err)
			return nil
		}
		return err
	}

	var errs []error
	l.sessions.With(msg, func(s *Session) {
		if edit && s.Closed() {
			return
		}

		for i, trigger := range triggers {
			slot := s.Slot(i)
			if slot.State == SlotClosed {
				continue
			}

			res := bundle.Resolve(trigger.Query)
			metrics.LookupsTotal.WithLabelValues(string(trigger.Kind), string(res.Outcome())).Inc()
			if res.Outcome() == OutcomeNotFound && l.misses != nil {
				l.misses.RecordMiss(trigger.Query)
			}

			out := buildResponse(msg.Author.ID, trigger, res)
			out.ReplyTo = msg.ID

			responseID, err := l.deliver(ctx, msg.ChannelID, slot, out)
			if err != nil {
				log.Printf("Linker: failed to respond to %q in message %s: %v", trigger.Query, msg.ID, err)
				errs = append(errs, err)
				continue
			}
			s.Activate(i, responseID)
		}
	})

	return errors.Join(errs...)
}

// deliver edits the slot's response in place when there is one and sends a
// new reply otherwise
func (l *Linker) deliver(ctx context.Context, channelID models.Snowflake, slot Slot, out models.OutboundMessage) (models.Snowflake, error) {
	if slot.State == SlotActive {
		if err := l.messenger.EditMessage(ctx, channelID, slot.ResponseID, out); err != nil {
			return 0, fmt.Errorf("edit response %s: %w", slot.ResponseID, err)
		}
		return slot.ResponseID, nil
	}

	id, err := l.messenger.SendMessage(ctx, channelID, out)
	if err != nil {
		return 0, fmt.Errorf("send response: %w", err)
	}
	return id, nil
}

// HandleInteraction applies a button press or selection on one of our
// responses. Malformed and unauthorized interactions are dropped quietly.
func (l *Linker) HandleInteraction(ctx context.Context, ev models.InteractionEvent) error {
	action, err := ParseAction(ev.CustomID, ev.Values)
	if err != nil {
		metrics.InteractionsTotal.WithLabelValues("unknown", "invalid").Inc()
		log.Printf("Linker: ignoring interaction %s: %v", ev.ID, err)
		return nil
	}

	var sourceID, repliedAuthor models.Snowflake
	if ev.Referenced != nil {
		sourceID = ev.Referenced.ID
		repliedAuthor = ev.Referenced.Author.ID
	}

	if !Authorized(action.RequesterID, ev.User.ID, repliedAuthor, ev.GuildOwnerID) {
		metrics.InteractionsTotal.WithLabelValues(string(action.Type), "unauthorized").Inc()
		return nil
	}

	switch action.Type {
	case ActionDelete:
		err = l.deleteResponse(ctx, ev, sourceID)
	case ActionLockIn:
		err = l.lockIn(ctx, ev, sourceID)
	case ActionSelect:
		err = l.selectCard(ctx, ev, action)
	}

	result := "applied"
	if err != nil {
		result = "failed"
	}
	metrics.InteractionsTotal.WithLabelValues(string(action.Type), result).Inc()
	return err
}

func (l *Linker) deleteResponse(ctx context.Context, ev models.InteractionEvent, sourceID models.Snowflake) error {
	if err := l.messenger.UpdateInteraction(ctx, ev.ID, ev.Token, nil); err != nil {
		log.Printf("Linker: failed to acknowledge interaction %s: %v", ev.ID, err)
	}
	if err := l.messenger.DeleteMessage(ctx, ev.Message.ChannelID, ev.Message.ID); err != nil {
		return fmt.Errorf("delete response %s: %w", ev.Message.ID, err)
	}
	l.sessions.CloseResponse(sourceID, ev.Message.ID)
	return nil
}

// lockIn strips the buttons and dropdown, keeping the content and wiki link
func (l *Linker) lockIn(ctx context.Context, ev models.InteractionEvent, sourceID models.Snowflake) error {
	out := models.OutboundMessage{
		Content:  ev.Message.Content,
		Controls: linkControls(ev.Message.Controls),
	}
	if err := l.messenger.UpdateInteraction(ctx, ev.ID, ev.Token, &out); err != nil {
		return fmt.Errorf("lock in response %s: %w", ev.Message.ID, err)
	}
	l.sessions.CloseResponse(sourceID, ev.Message.ID)
	return nil
}

// selectCard shows the chosen candidate and keeps the dropdown so the user
// can change their mind. Selection values are always collector info.
func (l *Linker) selectCard(ctx context.Context, ev models.InteractionEvent, action Action) error {
	bundle := l.catalog.Bundle()
	if bundle == nil {
		return ErrNoCatalog
	}

	card := bundle.ByCollectorInfo(action.Selected)
	if card == nil {
		// The catalog was reloaded since the dropdown was built
		log.Printf("Linker: selected card %q is no longer in the catalog", action.Selected)
		return l.messenger.UpdateInteraction(ctx, ev.ID, ev.Token, nil)
	}

	out := buildSingle(action.RequesterID, card, action.Kind)
	if dropdown, ok := selectControl(ev.Message.Controls); ok {
		out.Controls = append(out.Controls, dropdown)
	}

	if err := l.messenger.UpdateInteraction(ctx, ev.ID, ev.Token, &out); err != nil {
		return fmt.Errorf("update selection on %s: %w", ev.Message.ID, err)
	}
	return nil
}

// HandleReaction supports the legacy delete reaction on a response. Only the
// author of the triggering message or the guild owner may use it.
func (l *Linker) HandleReaction(ctx context.Context, ev models.ReactionEvent) error {
	if ev.Emoji != deleteReaction || ev.UserID == l.botUserID {
		return nil
	}

	sourceID, ok := l.sessions.SourceOf(ev.MessageID)
	if !ok {
		return nil
	}
	session, ok := l.sessions.Get(sourceID)
	if !ok {
		return nil
	}

	if !Authorized(session.AuthorID, ev.UserID, 0, ev.GuildOwnerID) {
		metrics.InteractionsTotal.WithLabelValues("reaction", "unauthorized").Inc()
		return nil
	}

	if err := l.messenger.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
		metrics.InteractionsTotal.WithLabelValues("reaction", "failed").Inc()
		return fmt.Errorf("delete response %s: %w", ev.MessageID, err)
	}
	l.sessions.CloseResponse(sourceID, ev.MessageID)
	metrics.InteractionsTotal.WithLabelValues("reaction", "applied").Inc()
	return nil
}
