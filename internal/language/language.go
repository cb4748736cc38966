package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto is the reserved code that asks a backend to detect the spoken
// language itself.
const Auto = "auto"

// bibliographic maps ISO 639-2/B codes to their 639-1 equivalents.
// golang.org/x/text only canonicalizes the terminology (/T) forms.
var bibliographic = map[string]string{
	"fre": "fr",
	"ger": "de",
	"chi": "zh",
	"dut": "nl",
}

var englishNames = display.English.Languages()

// IsAuto reports whether code requests backend language detection.
// The empty string counts: jobs store it when no language was chosen.
func IsAuto(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	return code == "" || code == Auto
}

// Normalize trims, lowercases, and canonicalizes a language code to
// its ISO 639-1 form where one exists ("eng" becomes "en", "pt-BR"
// becomes "pt"). Unrecognized input is returned trimmed and lowercased
// so a backend that understands more codes than we do still receives
// it.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == Auto {
		return code
	}
	if mapped, ok := bibliographic[code]; ok {
		return mapped
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	return base.String()
}

// DisplayName returns an English name for a language code, e.g.
// "German" for "de". Auto and empty codes render as "Auto-detect",
// and unrecognized codes come back uppercased.
func DisplayName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == Auto {
		return "Auto-detect"
	}
	if mapped, ok := bibliographic[code]; ok {
		code = mapped
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := englishNames.Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}

// Option pairs a code with its display name for form suggestion lists.
type Option struct {
	Code string
	Name string
}

// commonCodes is the suggestion set offered in the wizard, not a limit
// on what Normalize accepts.
var commonCodes = []string{
	"en", "es", "fr", "de", "it", "pt", "ja", "ko", "zh",
	"ru", "ar", "hi", "nl", "pl", "sv", "da", "no", "fi",
}

// Common lists auto detection plus frequently transcribed languages,
// in display order.
func Common() []Option {
	options := make([]Option, 0, len(commonCodes)+1)
	options = append(options, Option{Code: Auto, Name: DisplayName(Auto)})
	for _, code := range commonCodes {
		options = append(options, Option{Code: code, Name: DisplayName(code)})
	}
	return options
}
