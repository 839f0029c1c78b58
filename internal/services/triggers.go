package services

import (
	"regexp"
	"sort"

	"github.com/codyseavey/card-linker/internal/models"
)

// A query may not start with @. The exclusion lives in the pattern so an
// unclosed [[@mention does not swallow a trigger that follows it.
var (
	squareTrigger = regexp.MustCompile(`\[\[([^@\n].*?)??\]\]`)
	curlyTrigger  = regexp.MustCompile(`\{\{([^@\n].*?)??\}\}`)
)

// Trigger is one card summons embedded in a message body
type Trigger struct {
	Kind  models.MatchKind
	Query string
	pos   int
}

// ExtractTriggers finds every [[query]] and {{query}} in a message body, in
// order of occurrence. Queries starting with @ are reserved and never match.
func ExtractTriggers(content string) []Trigger {
	var triggers []Trigger
	collect := func(re *regexp.Regexp, kind models.MatchKind) {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			var query string
			if m[2] >= 0 {
				query = content[m[2]:m[3]]
			}
			triggers = append(triggers, Trigger{Kind: kind, Query: query, pos: m[0]})
		}
	}
	collect(squareTrigger, models.MatchImage)
	collect(curlyTrigger, models.MatchWiki)

	sort.SliceStable(triggers, func(i, j int) bool {
		return triggers[i].pos < triggers[j].pos
	})
	return triggers
}
