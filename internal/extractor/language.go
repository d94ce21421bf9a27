package extractor

import (
	"strings"

	"golang.org/x/text/language"
)

// fallbackTessLanguage is used when a configured locale tag cannot be parsed.
const fallbackTessLanguage = "eng"

// tesseractNames maps ISO 639-3 codes to traineddata names where the two
// disagree. Most languages pass through unchanged ("deu", "fra", "jpn").
var tesseractNames = map[string]string{
	"nob": "nor",
	"nno": "nor",
}

// TesseractLanguage derives the tesseract traineddata name from a BCP 47
// locale tag: "en-US" becomes "eng", "de" becomes "deu". Chinese tags pick
// the simplified or traditional model based on the script subtag.
// Unparseable tags fall back to "eng".
func TesseractLanguage(tag string) string {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return fallbackTessLanguage
	}
	base, conf := parsed.Base()
	if conf == language.No {
		return fallbackTessLanguage
	}
	code := strings.ToLower(base.ISO3())
	if code == "" {
		return fallbackTessLanguage
	}
	if code == "zho" {
		if script, _ := parsed.Script(); script.String() == "Hant" {
			return "chi_tra"
		}
		return "chi_sim"
	}
	if name, ok := tesseractNames[code]; ok {
		return name
	}
	return code
}
