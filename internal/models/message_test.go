package models

import (
	"encoding/json"
	"testing"
)

func TestSnowflakeJSON(t *testing.T) {
	data, err := json.Marshal(Snowflake(123456789012345678))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"123456789012345678"` {
		t.Errorf("Expected string encoding, got %s", data)
	}

	tests := []struct {
		input   string
		want    Snowflake
		wantErr bool
	}{
		{`"123456789012345678"`, 123456789012345678, false},
		{`42`, 42, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var s Snowflake
			err := json.Unmarshal([]byte(tt.input), &s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && s != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, s, tt.want)
			}
		})
	}
}

func TestCardRecordLists(t *testing.T) {
	card := CardRecord{
		ID:          "1",
		Nicknames:   "Nine Rider,, ,lom",
		Personas:    "Ulaire Enquea",
		DisplayName: "Ulaire Enquea",
		CollInfo:    "1U231",
	}

	if got := card.NicknameList(); len(got) != 2 || got[0] != "Nine Rider" || got[1] != "lom" {
		t.Errorf("Unexpected nicknames %q", got)
	}
	if got := card.PersonaList(); len(got) != 1 {
		t.Errorf("Unexpected personas %q", got)
	}
	if got := card.Label(); got != "Ulaire Enquea (1U231)" {
		t.Errorf("Unexpected label %q", got)
	}
	if !card.Indexable() {
		t.Error("Expected record to be indexable")
	}

	card.CollInfo = " "
	if card.Indexable() {
		t.Error("Record without collector info must not be indexable")
	}
}

func TestParseMatchKind(t *testing.T) {
	for _, s := range []string{"Image", "Wiki", "Text"} {
		if kind, ok := ParseMatchKind(s); !ok || string(kind) != s {
			t.Errorf("ParseMatchKind(%q) = %q, %v", s, kind, ok)
		}
	}
	if _, ok := ParseMatchKind("image"); ok {
		t.Error("Match kinds are case sensitive")
	}
}
