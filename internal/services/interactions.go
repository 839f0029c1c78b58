package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codyseavey/card-linker/internal/models"
)

// ActionType is what a control does when activated
type ActionType string

const (
	ActionDelete ActionType = "delete"
	ActionLockIn ActionType = "lockin"
	ActionSelect ActionType = "dropdown"
)

var ErrInvalidControlID = errors.New("invalid control identifier")

// Action is a decoded control interaction. RequesterID is the user who
// summoned the response (zero for public controls) and Selected is only set
// for ActionSelect.
type Action struct {
	Type        ActionType
	RequesterID models.Snowflake
	Kind        models.MatchKind
	Selected    string
}

// ControlID encodes the {action}_{requesterID}_{matchKind} identifier carried
// by every button and select this service produces
func ControlID(action ActionType, requester models.Snowflake, kind models.MatchKind) string {
	return fmt.Sprintf("%s_%s_%s", action, requester, kind)
}

// ParseAction decodes a control identifier and the selected values of the
// interaction into an Action
func ParseAction(customID string, values []string) (Action, error) {
	parts := strings.SplitN(customID, "_", 3)
	if len(parts) != 3 {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidControlID, customID)
	}

	requester, err := models.ParseSnowflake(parts[1])
	if err != nil {
		return Action{}, fmt.Errorf("%w: bad requester in %q", ErrInvalidControlID, customID)
	}

	kind, ok := models.ParseMatchKind(parts[2])
	if !ok {
		return Action{}, fmt.Errorf("%w: bad match kind in %q", ErrInvalidControlID, customID)
	}

	action := Action{RequesterID: requester, Kind: kind}
	switch ActionType(parts[0]) {
	case ActionDelete:
		action.Type = ActionDelete
	case ActionLockIn:
		action.Type = ActionLockIn
	case ActionSelect:
		if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			return Action{}, fmt.Errorf("%w: selection without a value", ErrInvalidControlID)
		}
		action.Type = ActionSelect
		action.Selected = values[0]
	default:
		return Action{}, fmt.Errorf("%w: unknown action %q", ErrInvalidControlID, parts[0])
	}
	return action, nil
}

// Authorized decides whether actor may use a control. Public controls
// (requester zero) are open to everyone; otherwise the original requester,
// the author of the message the response replied to and the guild owner may.
func Authorized(requester, actor, repliedAuthor, guildOwner models.Snowflake) bool {
	if requester == 0 || actor == requester {
		return true
	}
	if repliedAuthor != 0 && actor == repliedAuthor {
		return true
	}
	return guildOwner != 0 && actor == guildOwner
}
