package testutil

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

// DatasetFixture describes a complete on-disk validation dataset for one
// language: the step protocol, the expected string table, the coordinate
// annotations, and the synthetic screens they refer to.
type DatasetFixture struct {
	Language string
	Steps    []model.TestStep
	Strings  model.ExpectedStrings
	Coords   model.CoordinateIndex
	Screens  map[string]ScreenConfig
}

// WriteProtocolCSV writes the ordered step list as a protocol table.
func WriteProtocolCSV(path string, steps []model.TestStep) error {
	f, err := os.Create(path) //nolint:gosec // G304: fixture paths are caller controlled
	if err != nil {
		return fmt.Errorf("failed to create protocol file: %w", err)
	}

	w := csv.NewWriter(f)
	_ = w.Write([]string{"StepID", "ScreenID", "ExpectedStringID"})
	for _, step := range steps {
		_ = w.Write([]string{step.StepID, step.ScreenID, step.ExpectedStringID})
	}
	w.Flush()

	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write protocol rows: %w", err)
	}
	return f.Close()
}

// WriteExpectedStrings writes the string-id to localized-text table as a
// flat JSON object.
func WriteExpectedStrings(path string, table model.ExpectedStrings) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal expected strings: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// WriteCoordinatesCSV writes the region annotation table with rows ordered
// by composite key so repeated runs produce identical files.
func WriteCoordinatesCSV(path string, index model.CoordinateIndex) error {
	keys := make([]model.CoordinateKey, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.StepID != b.StepID {
			return a.StepID < b.StepID
		}
		if a.ScreenID != b.ScreenID {
			return a.ScreenID < b.ScreenID
		}
		return a.StringID < b.StringID
	})

	f, err := os.Create(path) //nolint:gosec // G304: fixture paths are caller controlled
	if err != nil {
		return fmt.Errorf("failed to create coordinates file: %w", err)
	}

	w := csv.NewWriter(f)
	_ = w.Write([]string{"StepID", "ScreenID", "ExpectedStringID", "Left", "Top", "Right", "Bottom"})
	for _, key := range keys {
		box := index[key]
		_ = w.Write([]string{
			key.StepID, key.ScreenID, key.StringID,
			strconv.Itoa(box.Left), strconv.Itoa(box.Top),
			strconv.Itoa(box.Right), strconv.Itoa(box.Bottom),
		})
	}
	w.Flush()

	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write coordinate rows: %w", err)
	}
	return f.Close()
}

// WriteDataset materializes the fixture under dataDir using the layout the
// validation engine loads from: test_protocol.csv, string_coordinates.csv,
// expected_strings/<language>.json, and screenshots/<screen>.png.
func WriteDataset(dataDir string, fx DatasetFixture) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := WriteProtocolCSV(filepath.Join(dataDir, "test_protocol.csv"), fx.Steps); err != nil {
		return err
	}

	stringsDir := filepath.Join(dataDir, "expected_strings")
	if err := EnsureDir(stringsDir); err != nil {
		return fmt.Errorf("failed to create expected strings directory: %w", err)
	}
	if err := WriteExpectedStrings(filepath.Join(stringsDir, fx.Language+".json"), fx.Strings); err != nil {
		return err
	}

	if err := WriteCoordinatesCSV(filepath.Join(dataDir, "string_coordinates.csv"), fx.Coords); err != nil {
		return err
	}

	screenshotDir := filepath.Join(dataDir, "screenshots")
	for _, screenID := range sortedScreenIDs(fx.Screens) {
		img, err := GenerateScreen(fx.Screens[screenID])
		if err != nil {
			return fmt.Errorf("failed to generate screen %s: %w", screenID, err)
		}
		if err := WritePNG(filepath.Join(screenshotDir, screenID+".png"), img); err != nil {
			return fmt.Errorf("failed to write screen %s: %w", screenID, err)
		}
	}

	return nil
}

func sortedScreenIDs(screens map[string]ScreenConfig) []string {
	ids := make([]string, 0, len(screens))
	for id := range screens {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// sampleTexts holds the localized string tables for the sample dataset.
var sampleTexts = map[string]map[string]string{
	"en-US": {
		"menu.title":        "Main Menu",
		"menu.settings":     "Settings",
		"menu.logout":       "Log out",
		"settings.title":    "General",
		"settings.language": "Language",
		"settings.save":     "Save",
	},
	"de-DE": {
		"menu.title":        "Hauptmenü",
		"menu.settings":     "Einstellungen",
		"menu.logout":       "Abmelden",
		"settings.title":    "Allgemein",
		"settings.language": "Sprache",
		"settings.save":     "Speichern",
	},
	"fr-FR": {
		"menu.title":        "Menu principal",
		"menu.settings":     "Paramètres",
		"menu.logout":       "Déconnexion",
		"settings.title":    "Général",
		"settings.language": "Langue",
		"settings.save":     "Enregistrer",
	},
}

// sampleLayout fixes where each protocol step's string sits on its screen.
var sampleLayout = []struct {
	stepID   string
	screenID string
	stringID string
	left     int
	top      int
}{
	{"S01", "MainMenu", "menu.title", 40, 40},
	{"S02", "MainMenu", "menu.settings", 60, 120},
	{"S03", "MainMenu", "menu.logout", 60, 180},
	{"S04", "SettingsGeneral", "settings.title", 40, 40},
	{"S05", "SettingsGeneral", "settings.language", 60, 120},
	{"S06", "SettingsGeneral", "settings.save", 60, 400},
}

// SampleLanguages returns the languages the sample fixture has string
// tables for, sorted for stable iteration.
func SampleLanguages() []string {
	languages := make([]string, 0, len(sampleTexts))
	for language := range sampleTexts {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	return languages
}

// SampleFixture builds a small settings-app dataset in the given language:
// two screens, six protocol steps, one annotated region per step.
// Languages without a string table fall back to en-US text.
func SampleFixture(language string) DatasetFixture {
	texts, ok := sampleTexts[language]
	if !ok {
		texts = sampleTexts["en-US"]
	}

	fx := DatasetFixture{
		Language: language,
		Strings:  make(model.ExpectedStrings, len(sampleLayout)),
		Coords:   make(model.CoordinateIndex, len(sampleLayout)),
		Screens:  make(map[string]ScreenConfig),
	}

	for _, entry := range sampleLayout {
		text := texts[entry.stringID]

		step := model.TestStep{
			StepID:           entry.stepID,
			ScreenID:         entry.screenID,
			ExpectedStringID: entry.stringID,
		}
		fx.Steps = append(fx.Steps, step)
		fx.Strings[entry.stringID] = text

		screen, ok := fx.Screens[entry.screenID]
		if !ok {
			screen = DefaultScreenConfig()
		}
		placed := PlaceText(screen.FontFace, entry.stringID, text, entry.left, entry.top)
		screen.Texts = append(screen.Texts, placed)
		fx.Screens[entry.screenID] = screen

		fx.Coords[step.Key()] = placed.Box
	}

	return fx
}
