package services

import (
	"log"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/card-linker/internal/models"
)

// resolveCacheSize bounds the per-bundle cache of resolved queries
const resolveCacheSize = 2048

// IndexName identifies one of the lookup indices in a bundle
type IndexName string

const (
	IndexTitle         IndexName = "title"
	IndexSubtitle      IndexName = "subtitle"
	IndexFullTitle     IndexName = "fulltitle"
	IndexNickname      IndexName = "nickname"
	IndexPersona       IndexName = "persona"
	IndexCollectorInfo IndexName = "collinfo"
)

// AllIndexNames lists the indices in resolution probe order
func AllIndexNames() []IndexName {
	return []IndexName{IndexSubtitle, IndexCollectorInfo, IndexFullTitle, IndexTitle, IndexNickname, IndexPersona}
}

// cardIndex maps a normalized key to every record registered under it, in
// catalog order. A record registered twice under one key appears twice.
type cardIndex map[string][]*models.CardRecord

func (idx cardIndex) add(key string, card *models.CardRecord) {
	if strings.TrimSpace(key) == "" {
		return
	}
	idx[key] = append(idx[key], card)
}

// IndexBundle is an immutable snapshot of every lookup index built from one
// catalog load. Readers hold a bundle for the duration of a query; reloads
// build a new bundle and swap it in, never touching one already published.
type IndexBundle struct {
	cards     []models.CardRecord
	titles    cardIndex
	subtitles cardIndex
	fullTitle cardIndex
	nicknames cardIndex
	personas  cardIndex
	collInfo  map[string]*models.CardRecord
	position  map[*models.CardRecord]int

	builtAt time.Time
	skipped int

	// resolved caches query results for this bundle only
	resolved *lru.Cache[string, []*models.CardRecord]
}

// BuildIndex registers every indexable record under all of its derived keys
func BuildIndex(records []models.CardRecord) *IndexBundle {
	b := &IndexBundle{
		cards:     make([]models.CardRecord, len(records)),
		titles:    make(cardIndex),
		subtitles: make(cardIndex),
		fullTitle: make(cardIndex),
		nicknames: make(cardIndex),
		personas:  make(cardIndex),
		collInfo:  make(map[string]*models.CardRecord),
		position:  make(map[*models.CardRecord]int, len(records)),
		builtAt:   time.Now(),
	}
	copy(b.cards, records)

	cache, err := lru.New[string, []*models.CardRecord](resolveCacheSize)
	if err != nil {
		log.Printf("Card index: failed to create resolve cache: %v", err)
	}
	b.resolved = cache

	for i := range b.cards {
		card := &b.cards[i]
		b.position[card] = i
		if !card.Indexable() {
			b.skipped++
			continue
		}
		b.addCard(card)
	}

	return b
}

func (b *IndexBundle) addCard(card *models.CardRecord) {
	// Ulaire Enquea
	b.titles.add(Scrub(card.Title), card)
	// Lieutenant of Morgul
	b.subtitles.add(Scrub(card.Subtitle), card)
	// Ulaire Enquea Lieutenant of Morgul (T)
	b.fullTitle.add(Scrub(card.Title+card.Subtitle+card.TitleSuffix), card)

	for _, persona := range card.PersonaList() {
		b.personas.add(Scrub(persona), card)
	}

	hasSuffix := strings.TrimSpace(card.TitleSuffix) != ""

	if strings.TrimSpace(card.Subtitle) != "" {
		// lom
		abbr := Abbreviate(card.Subtitle)
		b.nicknames.add(abbr, card)
		// ulaireenquealom
		b.nicknames.add(Scrub(card.Title+abbr), card)

		// enquealom
		for _, word := range strings.Fields(card.Title) {
			lower := strings.ToLower(word)
			if lower == "the" || lower == "of" {
				continue
			}
			b.nicknames.add(Scrub(word+abbr), card)
		}

		if hasSuffix {
			// lomt
			b.fullTitle.add(Scrub(abbr+card.TitleSuffix), card)
		}

		// uelom
		fullAbbr := Abbreviate(card.Title + " " + card.Subtitle)
		b.nicknames.add(fullAbbr, card)

		if hasSuffix {
			// uelomt
			b.fullTitle.add(Scrub(fullAbbr+card.TitleSuffix), card)
		}
	} else {
		// awinl
		abbr := Abbreviate(card.Title)
		b.nicknames.add(abbr, card)

		if hasSuffix {
			b.fullTitle.add(Scrub(abbr+card.TitleSuffix), card)
		}
	}

	for _, nickname := range card.NicknameList() {
		nick := Scrub(nickname)
		b.nicknames.add(nick, card)

		if hasSuffix {
			b.fullTitle.add(Scrub(nick+card.TitleSuffix), card)
		}
	}

	key := Scrub(card.CollInfo)
	if _, exists := b.collInfo[key]; !exists && key != "" {
		b.collInfo[key] = card
	}
}

// multi returns the multi-valued index for a name, nil for collinfo
func (b *IndexBundle) multi(name IndexName) cardIndex {
	switch name {
	case IndexTitle:
		return b.titles
	case IndexSubtitle:
		return b.subtitles
	case IndexFullTitle:
		return b.fullTitle
	case IndexNickname:
		return b.nicknames
	case IndexPersona:
		return b.personas
	}
	return nil
}

// Lookup returns the records registered under an already-normalized key in one index
func (b *IndexBundle) Lookup(name IndexName, key string) []*models.CardRecord {
	if name == IndexCollectorInfo {
		if card, ok := b.collInfo[key]; ok {
			return []*models.CardRecord{card}
		}
		return nil
	}
	return b.multi(name)[key]
}

// ByCollectorInfo finds a card by its collector info, normalizing the input
func (b *IndexBundle) ByCollectorInfo(collInfo string) *models.CardRecord {
	return b.collInfo[Scrub(collInfo)]
}

// Keys returns every key registered in an index, in no particular order
func (b *IndexBundle) Keys(name IndexName) []string {
	if name == IndexCollectorInfo {
		keys := make([]string, 0, len(b.collInfo))
		for k := range b.collInfo {
			keys = append(keys, k)
		}
		return keys
	}
	idx := b.multi(name)
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	return keys
}

// HasKey reports whether an index contains a normalized key
func (b *IndexBundle) HasKey(name IndexName, key string) bool {
	return len(b.Lookup(name, key)) > 0
}

// IndexStats summarizes a bundle for status reporting
type IndexStats struct {
	BuiltAt  time.Time         `json:"built_at"`
	Cards    int               `json:"cards"`
	Indexed  int               `json:"indexed"`
	Skipped  int               `json:"skipped"`
	KeyCount map[IndexName]int `json:"key_count"`
}

func (b *IndexBundle) Stats() IndexStats {
	stats := IndexStats{
		BuiltAt:  b.builtAt,
		Cards:    len(b.cards),
		Indexed:  len(b.cards) - b.skipped,
		Skipped:  b.skipped,
		KeyCount: make(map[IndexName]int),
	}
	for _, name := range AllIndexNames() {
		if name == IndexCollectorInfo {
			stats.KeyCount[name] = len(b.collInfo)
			continue
		}
		stats.KeyCount[name] = len(b.multi(name))
	}
	return stats
}
