package services

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codyseavey/card-linker/internal/metrics"
	"github.com/codyseavey/card-linker/internal/models"
)

// substringMinLength is the shortest normalized query that also scans keys
// for substring matches. Shorter queries hit too many keys to be useful.
const substringMinLength = 3

// exactProbeOrder is the historical priority of the exact-key probes. The
// result is a set, so the order only decides option order in the dropdown.
var exactProbeOrder = []IndexName{
	IndexSubtitle,
	IndexCollectorInfo,
	IndexFullTitle,
	IndexTitle,
	IndexNickname,
	IndexPersona,
}

// substringScanIndices never includes personas: persona keys are short
// character names and substring hits on them are mostly noise
var substringScanIndices = []IndexName{
	IndexTitle,
	IndexSubtitle,
	IndexFullTitle,
	IndexNickname,
}

// Outcome classifies a resolution
type Outcome string

const (
	OutcomeNotFound  Outcome = "not_found"
	OutcomeFound     Outcome = "found"
	OutcomeAmbiguous Outcome = "ambiguous"
)

// Resolution is the result of resolving one query
type Resolution struct {
	Query      string               `json:"query"`
	Key        string               `json:"key"`
	Candidates []*models.CardRecord `json:"candidates"`
}

func (r Resolution) Outcome() Outcome {
	switch len(r.Candidates) {
	case 0:
		return OutcomeNotFound
	case 1:
		return OutcomeFound
	}
	return OutcomeAmbiguous
}

// Card returns the single match, or nil when the resolution is not unambiguous
func (r Resolution) Card() *models.CardRecord {
	if len(r.Candidates) != 1 {
		return nil
	}
	return r.Candidates[0]
}

// candidateSet keeps first-seen order while de-duplicating by record identity
type candidateSet struct {
	seen  map[*models.CardRecord]struct{}
	cards []*models.CardRecord
}

func newCandidateSet() *candidateSet {
	return &candidateSet{seen: make(map[*models.CardRecord]struct{})}
}

func (s *candidateSet) addAll(cards []*models.CardRecord) {
	for _, c := range cards {
		if _, ok := s.seen[c]; ok {
			continue
		}
		s.seen[c] = struct{}{}
		s.cards = append(s.cards, c)
	}
}

// Resolve finds every card a free-text query could refer to, then applies the
// same-title collapse so printings of one card do not force a dropdown
func (b *IndexBundle) Resolve(query string) Resolution {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	}()

	key := Scrub(query)
	res := Resolution{Query: query, Key: key}

	if b.resolved != nil {
		if cached, ok := b.resolved.Get(key); ok {
			metrics.ResolveCacheHits.Inc()
			res.Candidates = cached
			return res
		}
		metrics.ResolveCacheMisses.Inc()
	}

	res.Candidates = collapseSameTitle(b.candidates(key))

	if b.resolved != nil {
		b.resolved.Add(key, res.Candidates)
	}
	return res
}

func (b *IndexBundle) candidates(key string) []*models.CardRecord {
	set := newCandidateSet()

	for _, name := range exactProbeOrder {
		set.addAll(b.Lookup(name, key))
	}

	if utf8.RuneCountInString(key) >= substringMinLength {
		// Map order is random; sort the scan hits into catalog order so the
		// dropdown reads the same way every time
		var hits []*models.CardRecord
		for _, name := range substringScanIndices {
			for k, cards := range b.multi(name) {
				if strings.Contains(k, key) {
					hits = append(hits, cards...)
				}
			}
		}
		sort.SliceStable(hits, func(i, j int) bool {
			return b.position[hits[i]] < b.position[hits[j]]
		})
		set.addAll(hits)
	}

	return set.cards
}

// collapseSameTitle narrows candidates that are all printings of one title to
// the base printing: an empty suffix or an errata suffix. Anything other than a
// single survivor leaves the candidates untouched.
func collapseSameTitle(cards []*models.CardRecord) []*models.CardRecord {
	if len(cards) < 2 {
		return cards
	}

	title := cards[0].Title
	for _, c := range cards[1:] {
		if c.Title != title {
			return cards
		}
	}

	var base []*models.CardRecord
	for _, c := range cards {
		suffix := strings.TrimSpace(c.TitleSuffix)
		if suffix == "" || strings.Contains(strings.ToLower(suffix), "errata") {
			base = append(base, c)
		}
	}

	if len(base) == 1 {
		return base
	}
	return cards
}
