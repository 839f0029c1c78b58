package services

import (
	"errors"
	"testing"

	"github.com/codyseavey/card-linker/internal/models"
)

func TestControlIDRoundTrip(t *testing.T) {
	id := ControlID(ActionLockIn, 1234567890123, models.MatchWiki)
	if id != "lockin_1234567890123_Wiki" {
		t.Fatalf("Unexpected control ID %q", id)
	}

	action, err := ParseAction(id, nil)
	if err != nil {
		t.Fatalf("ParseAction failed: %v", err)
	}
	if action.Type != ActionLockIn || action.RequesterID != 1234567890123 || action.Kind != models.MatchWiki {
		t.Errorf("Unexpected action %+v", action)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name      string
		customID  string
		values    []string
		wantType  ActionType
		requester models.Snowflake
		kind      models.MatchKind
		selected  string
		wantErr   bool
	}{
		{name: "delete", customID: "delete_123_Image", wantType: ActionDelete, requester: 123, kind: models.MatchImage},
		{name: "public delete", customID: "delete_0_Image", wantType: ActionDelete, requester: 0, kind: models.MatchImage},
		{name: "lock in", customID: "lockin_7_Wiki", wantType: ActionLockIn, requester: 7, kind: models.MatchWiki},
		{name: "select", customID: "dropdown_7_Image", values: []string{"1U231"}, wantType: ActionSelect, requester: 7, kind: models.MatchImage, selected: "1U231"},
		{name: "select without value", customID: "dropdown_7_Image", wantErr: true},
		{name: "select with blank value", customID: "dropdown_7_Image", values: []string{" "}, wantErr: true},
		{name: "too few parts", customID: "delete_7", wantErr: true},
		{name: "empty", customID: "", wantErr: true},
		{name: "unknown action", customID: "explode_7_Image", wantErr: true},
		{name: "bad requester", customID: "delete_abc_Image", wantErr: true},
		{name: "bad kind", customID: "delete_7_Picture", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := ParseAction(tt.customID, tt.values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %+v", tt.customID, action)
				}
				if !errors.Is(err, ErrInvalidControlID) {
					t.Errorf("Expected ErrInvalidControlID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if action.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", action.Type, tt.wantType)
			}
			if action.RequesterID != tt.requester {
				t.Errorf("RequesterID = %s, want %s", action.RequesterID, tt.requester)
			}
			if action.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", action.Kind, tt.kind)
			}
			if action.Selected != tt.selected {
				t.Errorf("Selected = %q, want %q", action.Selected, tt.selected)
			}
		})
	}
}

func TestAuthorized(t *testing.T) {
	const (
		requester = models.Snowflake(7)
		replied   = models.Snowflake(8)
		owner     = models.Snowflake(1)
		stranger  = models.Snowflake(99)
	)

	tests := []struct {
		name      string
		requester models.Snowflake
		actor     models.Snowflake
		replied   models.Snowflake
		owner     models.Snowflake
		want      bool
	}{
		{"public control", 0, stranger, replied, owner, true},
		{"requester", requester, requester, replied, owner, true},
		{"replied-to author", requester, replied, replied, owner, true},
		{"guild owner", requester, owner, replied, owner, true},
		{"stranger", requester, stranger, replied, owner, false},
		{"unknown replied author", requester, stranger, 0, owner, false},
		{"no guild owner", requester, stranger, replied, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorized(tt.requester, tt.actor, tt.replied, tt.owner); got != tt.want {
				t.Errorf("Authorized() = %v, want %v", got, tt.want)
			}
		})
	}
}
