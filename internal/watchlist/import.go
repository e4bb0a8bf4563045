// Package watchlist imports stolen-plate lists published by campus
// security into the local cache. Lists arrive as CSV exports in a few
// known column layouts and encodings.
package watchlist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"gatepass-client/internal/storage"
)

// Definition of fields in a watchlist CSV export.
type ListDefinition struct {
	PlateField  string
	ReasonField string

	Language string // Language code, e.g. "en", "fr"
}

// Known field names in watchlist exports, in different languages.
// Security publishes both English and French layouts.
var ListDefinitions = []ListDefinition{
	{
		PlateField:  "PLATE NUMBER",
		ReasonField: "REASON",
		Language:    "en",
	},
	{
		PlateField:  "NUMERO DE PLAQUE",
		ReasonField: "MOTIF",
		Language:    "fr",
	},
}

type Importer struct {
	store  storage.Provider
	logger *slog.Logger
}

func NewImporter(store storage.Provider) *Importer {
	return &Importer{
		store:  store,
		logger: slog.With("component", "watchlist"),
	}
}

// ImportFile reads one CSV export and upserts every row into the
// watchlist. Returns the number of plates imported.
func (im *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open watchlist file: %w", err)
	}
	defer f.Close()

	reader, err := newCSVReader(f)
	if err != nil {
		return 0, err
	}

	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read watchlist header: %w", err)
	}

	idxPlate, idxReason, def, err := matchDefinition(headers)
	if err != nil {
		return 0, err
	}
	im.logger.Debug("Matched watchlist layout", "language", def.Language, "file", path)

	count := 0
	now := time.Now().UTC()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("error reading watchlist CSV: %w", err)
		}
		if idxPlate >= len(record) {
			continue
		}

		plate := storage.NormalizePlate(record[idxPlate])
		if plate == "" {
			continue
		}
		reason := ""
		if idxReason != -1 && idxReason < len(record) {
			reason = strings.TrimSpace(record[idxReason])
		}

		err = im.store.PutWatchlistEntry(ctx, storage.WatchlistEntry{
			PlateNumber: plate,
			Reason:      reason,
			AddedAt:     now,
		})
		if err != nil {
			return count, err
		}
		count++
	}

	im.logger.Info("Imported watchlist", "file", path, "plates", count)
	return count, nil
}

// ImportFolder imports every .csv file under root.
func (im *Importer) ImportFolder(ctx context.Context, root string) (int, error) {
	if !filepath.IsAbs(root) {
		cwd, err := os.Getwd()
		if err != nil {
			return 0, fmt.Errorf("unable to get current working directory: %w", err)
		}
		root = filepath.Join(cwd, root)
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("watchlist folder does not exist: %s", root)
		}
		return 0, fmt.Errorf("error checking watchlist folder: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("watchlist folder is not a directory: %s", root)
	}

	total := 0
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".csv") {
			return nil
		}
		n, err := im.ImportFile(ctx, path)
		total += n
		return err
	})
	return total, err
}

// Check answers whether a plate is flagged. Plate comparison is
// case-insensitive and ignores spacing; the store normalizes.
func (im *Importer) Check(ctx context.Context, plate string) (*storage.WatchlistEntry, error) {
	return im.store.GetWatchlistEntry(ctx, plate)
}

// newCSVReader wraps f with a UTF-16 decoder when a BOM is present.
// Some campus systems export UTF-16 with BOM.
func newCSVReader(f *os.File) (*csv.Reader, error) {
	bom := make([]byte, 2)
	n, err := f.Read(bom)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read BOM: %w", err)
	}

	var reader *csv.Reader
	if n == 2 && (bom[0] == 0xFE && bom[1] == 0xFF || bom[0] == 0xFF && bom[1] == 0xFE) {
		utf16bom := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		utf16Reader := transform.NewReader(io.MultiReader(
			// Prepend BOM bytes back to stream
			strings.NewReader(string(bom)),
			f,
		), utf16bom)
		reader = csv.NewReader(utf16Reader)
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek file: %w", err)
		}
		reader = csv.NewReader(f)
	}

	reader.Comma = ','
	reader.LazyQuotes = true
	reader.FieldsPerRecord = 0
	return reader, nil
}

func matchDefinition(headers []string) (idxPlate, idxReason int, def ListDefinition, err error) {
	for _, def = range ListDefinitions {
		idxPlate, idxReason = -1, -1
		for i, h := range headers {
			switch strings.ToUpper(strings.TrimSpace(h)) {
			case def.PlateField:
				idxPlate = i
			case def.ReasonField:
				idxReason = i
			}
		}
		if idxPlate != -1 {
			return idxPlate, idxReason, def, nil
		}
	}
	return -1, -1, ListDefinition{}, fmt.Errorf("watchlist CSV missing a plate number column")
}
