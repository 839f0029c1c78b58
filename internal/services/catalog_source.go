package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codyseavey/card-linker/internal/models"
)

const (
	googleSheetExportURL = "https://docs.google.com/spreadsheets/d/%s/export?format=tsv"
	sheetDownloadTimeout = 2 * time.Minute
)

// CatalogSource produces the full ordered list of catalog records
type CatalogSource interface {
	Load(ctx context.Context) ([]models.CardRecord, error)
}

// FileSource reads the catalog from a local TSV file
type FileSource struct {
	Path string
}

func (s *FileSource) Load(ctx context.Context) ([]models.CardRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open card file: %w", err)
	}
	defer f.Close()

	return ParseCatalogTSV(f)
}

// SheetSource downloads the TSV export of a Google Sheet into the card file
// and then reads that file. A failed download falls back to the copy on disk
// from the last successful download.
type SheetSource struct {
	SheetID   string
	CachePath string
	baseURL   string
	client    *http.Client
}

func NewSheetSource(sheetID, cachePath string) *SheetSource {
	return &SheetSource{
		SheetID:   sheetID,
		CachePath: cachePath,
		baseURL:   googleSheetExportURL,
		client: &http.Client{
			Timeout: sheetDownloadTimeout,
		},
	}
}

func (s *SheetSource) Load(ctx context.Context) ([]models.CardRecord, error) {
	if err := s.download(ctx); err != nil {
		log.Printf("Catalog: sheet download failed, using cached %s: %v", s.CachePath, err)
	}
	file := &FileSource{Path: s.CachePath}
	return file.Load(ctx)
}

func (s *SheetSource) download(ctx context.Context) error {
	reqURL := fmt.Sprintf(s.baseURL, s.SheetID)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	if dir := filepath.Dir(s.CachePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// Write to a temp file and rename so a half-written download never
	// replaces the last good copy
	tmpPath := s.CachePath + ".download"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create card file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write card file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write card file: %w", err)
	}

	if err := os.Rename(tmpPath, s.CachePath); err != nil {
		return fmt.Errorf("failed to replace card file: %w", err)
	}
	return nil
}

// catalogColumns maps scrubbed header names to record fields
var catalogColumns = map[string]func(*models.CardRecord, string){
	"id":          func(c *models.CardRecord, v string) { c.ID = v },
	"title":       func(c *models.CardRecord, v string) { c.Title = v },
	"subtitle":    func(c *models.CardRecord, v string) { c.Subtitle = v },
	"titlesuffix": func(c *models.CardRecord, v string) { c.TitleSuffix = v },
	"suffix":      func(c *models.CardRecord, v string) { c.TitleSuffix = v },
	"nicknames":   func(c *models.CardRecord, v string) { c.Nicknames = v },
	"personas":    func(c *models.CardRecord, v string) { c.Personas = v },
	"displayname": func(c *models.CardRecord, v string) { c.DisplayName = v },
	"imageurl":    func(c *models.CardRecord, v string) { c.ImageURL = v },
	"wikiurl":     func(c *models.CardRecord, v string) { c.WikiURL = v },
	"collinfo":    func(c *models.CardRecord, v string) { c.CollInfo = v },
}

// ParseCatalogTSV reads a tab-separated catalog with a header row. Header
// names are matched loosely ("Title Suffix", "title_suffix" and "TitleSuffix"
// all work); unknown columns are ignored.
func ParseCatalogTSV(r io.Reader) ([]models.CardRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}

	setters := make([]func(*models.CardRecord, string), len(header))
	found := make(map[string]bool)
	for i, col := range header {
		// Scrub keeps underscores, the column names do not
		name := strings.ReplaceAll(Scrub(col), "_", "")
		if setter, ok := catalogColumns[name]; ok {
			setters[i] = setter
			found[name] = true
		}
	}

	for _, required := range []string{"id", "title", "collinfo"} {
		if !found[required] {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	var cards []models.CardRecord
	lineNum := 1
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		var card models.CardRecord
		for i, value := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&card, value)
			}
		}
		cards = append(cards, card)
	}

	return cards, nil
}
