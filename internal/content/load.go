package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// LoadDeck reads a deck from a .yaml/.yml, .json or .xlsx file, fills in
// missing card ids and validates it. A deck without a title takes the file
// name.
func LoadDeck(path string) (Deck, error) {
	var (
		d   Deck
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		d, err = loadYAML(path)
	case ".json":
		d, err = loadJSON(path)
	case ".xlsx":
		d, err = loadXLSX(path)
	default:
		return Deck{}, fmt.Errorf("unsupported deck format %q", ext)
	}
	if err != nil {
		return Deck{}, err
	}

	if d.Title == "" {
		d.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	d.FillIDs()
	if err := d.Validate(); err != nil {
		return Deck{}, fmt.Errorf("deck %s: %w", path, err)
	}
	return d, nil
}

func loadYAML(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("read deck: %w", err)
	}
	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Deck{}, fmt.Errorf("parse yaml deck: %w", err)
	}
	return d, nil
}

func loadJSON(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("read deck: %w", err)
	}
	var d Deck
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Deck{}, fmt.Errorf("parse json deck: %w", err)
	}
	return d, nil
}

// loadXLSX reads the first sheet. Columns are front, back and an optional
// id; a first row whose first cell reads "front" is treated as a header.
// Rows with an empty front are skipped.
func loadXLSX(path string) (Deck, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("open xlsx deck: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Deck{}, fmt.Errorf("xlsx deck %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Deck{}, fmt.Errorf("read xlsx rows: %w", err)
	}

	var d Deck
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "front") {
			continue
		}
		c := Card{Front: cell(row, 0), Back: cell(row, 1), ID: cell(row, 2)}
		if c.Front == "" {
			continue
		}
		d.Cards = append(d.Cards, c)
	}
	return d, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// SaveDeck writes the deck as YAML.
func SaveDeck(path string, d Deck) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal deck: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
