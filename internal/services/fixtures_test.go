package services

import (
	"context"

	"github.com/codyseavey/card-linker/internal/models"
)

func ulaireEnquea() models.CardRecord {
	return models.CardRecord{
		ID:          "1",
		Title:       "Ulaire Enquea",
		Subtitle:    "Lieutenant of Morgul",
		TitleSuffix: "(T)",
		Personas:    "Ulaire Enquea",
		DisplayName: "Ulaire Enquea, Lieutenant of Morgul (T)",
		ImageURL:    "https://cards.example/1U231.jpg",
		WikiURL:     "https://wiki.example/Ulaire_Enquea",
		CollInfo:    "1U231",
	}
}

func gandalf() models.CardRecord {
	return models.CardRecord{
		ID:          "2",
		Title:       "Gandalf",
		Subtitle:    "Friend of Shadowfax",
		DisplayName: "Gandalf, Friend of Shadowfax",
		ImageURL:    "https://cards.example/1R364.jpg",
		WikiURL:     "https://wiki.example/Gandalf",
		CollInfo:    "1R364",
	}
}

func gandalfsStaff() models.CardRecord {
	return models.CardRecord{
		ID:          "3",
		Title:       "Gandalf's Staff",
		DisplayName: "Gandalf's Staff",
		ImageURL:    "https://cards.example/2R22.jpg",
		CollInfo:    "2R22",
	}
}

func testCatalog() []models.CardRecord {
	return []models.CardRecord{ulaireEnquea(), gandalf(), gandalfsStaff()}
}

// stubSource is a CatalogSource for tests. When started is set Load signals
// it on entry; when release is set Load blocks until it is closed.
type stubSource struct {
	records []models.CardRecord
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubSource) Load(ctx context.Context) ([]models.CardRecord, error) {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}
