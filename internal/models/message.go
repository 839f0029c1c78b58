package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Snowflake is a chat platform identifier. It travels as a decimal string in
// JSON because the values overflow JavaScript numbers.
type Snowflake uint64

func ParseSnowflake(s string) (Snowflake, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return Snowflake(v), nil
}

func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = 0
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Accept bare numbers too
		var n uint64
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return err
		}
		*s = Snowflake(n)
		return nil
	}
	if str == "" {
		*s = 0
		return nil
	}
	v, err := ParseSnowflake(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type User struct {
	ID  Snowflake `json:"id"`
	Bot bool      `json:"bot"`
}

// Message is the subset of a chat message the linker needs
type Message struct {
	ID        Snowflake `json:"id"`
	ChannelID Snowflake `json:"channel_id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Controls  []Control `json:"controls,omitempty"`
}

type ControlType string

const (
	ControlLink   ControlType = "link"
	ControlButton ControlType = "button"
	ControlSelect ControlType = "select"
)

type ButtonStyle string

const (
	ButtonPrimary ButtonStyle = "primary"
	ButtonDanger  ButtonStyle = "danger"
)

// SelectOption is one entry of a single-select control
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Control is a declarative interactive component attached to a message.
// Link controls carry a URL and no CustomID; buttons and selects carry a
// CustomID in the {action}_{requesterID}_{matchKind} scheme.
type Control struct {
	Type     ControlType    `json:"type"`
	CustomID string         `json:"custom_id,omitempty"`
	Label    string         `json:"label,omitempty"`
	URL      string         `json:"url,omitempty"`
	Style    ButtonStyle    `json:"style,omitempty"`
	Disabled bool           `json:"disabled,omitempty"`
	Options  []SelectOption `json:"options,omitempty"`
}

// MaxSelectOptions is the platform limit on options in a single select
const MaxSelectOptions = 25

// OutboundMessage is a message body the linker asks the messenger to send or apply
type OutboundMessage struct {
	Content  string    `json:"content"`
	ReplyTo  Snowflake `json:"reply_to,omitempty"`
	Controls []Control `json:"controls,omitempty"`
}

// MessageEvent is delivered for message-created and message-edited
type MessageEvent struct {
	Message      Message   `json:"message"`
	GuildOwnerID Snowflake `json:"guild_owner_id"`
}

// ReactionEvent is delivered when a reaction is added to a message
type ReactionEvent struct {
	MessageID    Snowflake `json:"message_id"`
	ChannelID    Snowflake `json:"channel_id"`
	UserID       Snowflake `json:"user_id"`
	Emoji        string    `json:"emoji"`
	GuildOwnerID Snowflake `json:"guild_owner_id"`
}

// InteractionEvent is delivered when a button or select on a response is used.
// Message is the response carrying the control, Referenced is the message the
// response replied to (nil when the platform did not resolve it).
type InteractionEvent struct {
	ID           Snowflake `json:"id"`
	Token        string    `json:"token"`
	CustomID     string    `json:"custom_id"`
	Values       []string  `json:"values,omitempty"`
	User         User      `json:"user"`
	Message      Message   `json:"message"`
	Referenced   *Message  `json:"referenced,omitempty"`
	GuildOwnerID Snowflake `json:"guild_owner_id"`
}
