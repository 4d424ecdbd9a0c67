// Package language maps the language labels returned by Whisper endpoints to
// ISO 639-1 codes. Depending on the deployment the label is either a code
// ("en") or a lowercase or title-case English name ("english", "English").
package language

import (
	"sort"
	"strings"
)

// Language is a language Whisper can detect.
type Language struct {
	Code string // ISO 639-1 code (e.g., "en")
	Name string // English name (e.g., "English")
}

// whisperLanguages follows the language table of the Whisper tokenizer.
var whisperLanguages = map[string]string{
	"en": "English", "zh": "Chinese", "de": "German", "es": "Spanish",
	"ru": "Russian", "ko": "Korean", "fr": "French", "ja": "Japanese",
	"pt": "Portuguese", "tr": "Turkish", "pl": "Polish", "ca": "Catalan",
	"nl": "Dutch", "ar": "Arabic", "sv": "Swedish", "it": "Italian",
	"id": "Indonesian", "hi": "Hindi", "fi": "Finnish", "vi": "Vietnamese",
	"he": "Hebrew", "uk": "Ukrainian", "el": "Greek", "ms": "Malay",
	"cs": "Czech", "ro": "Romanian", "da": "Danish", "hu": "Hungarian",
	"ta": "Tamil", "no": "Norwegian", "th": "Thai", "ur": "Urdu",
	"hr": "Croatian", "bg": "Bulgarian", "lt": "Lithuanian", "la": "Latin",
	"mi": "Maori", "ml": "Malayalam", "cy": "Welsh", "sk": "Slovak",
	"te": "Telugu", "fa": "Persian", "lv": "Latvian", "bn": "Bengali",
	"sr": "Serbian", "az": "Azerbaijani", "sl": "Slovenian", "kn": "Kannada",
	"et": "Estonian", "mk": "Macedonian", "br": "Breton", "eu": "Basque",
	"is": "Icelandic", "hy": "Armenian", "ne": "Nepali", "mn": "Mongolian",
	"bs": "Bosnian", "kk": "Kazakh", "sq": "Albanian", "sw": "Swahili",
	"gl": "Galician", "mr": "Marathi", "pa": "Punjabi", "si": "Sinhala",
	"km": "Khmer", "sn": "Shona", "yo": "Yoruba", "so": "Somali",
	"af": "Afrikaans", "oc": "Occitan", "ka": "Georgian", "be": "Belarusian",
	"tg": "Tajik", "sd": "Sindhi", "gu": "Gujarati", "am": "Amharic",
	"yi": "Yiddish", "lo": "Lao", "uz": "Uzbek", "fo": "Faroese",
	"ht": "Haitian Creole", "ps": "Pashto", "tk": "Turkmen", "nn": "Nynorsk",
	"mt": "Maltese", "sa": "Sanskrit", "lb": "Luxembourgish", "my": "Myanmar",
	"bo": "Tibetan", "tl": "Tagalog", "mg": "Malagasy", "as": "Assamese",
	"tt": "Tatar", "ln": "Lingala", "ha": "Hausa", "ba": "Bashkir",
	"jw": "Javanese", "su": "Sundanese", "yue": "Cantonese", "haw": "Hawaiian",
}

// Whisper also answers with a few alternative names.
var aliases = map[string]string{
	"burmese":       "my",
	"valencian":     "ca",
	"flemish":       "nl",
	"haitian":       "ht",
	"letzeburgesch": "lb",
	"pushto":        "ps",
	"panjabi":       "pa",
	"moldavian":     "ro",
	"moldovan":      "ro",
	"sinhalese":     "si",
	"castilian":     "es",
	"mandarin":      "zh",
}

var nameIndex map[string]string

func init() {
	nameIndex = make(map[string]string, len(whisperLanguages)+len(aliases))
	for code, name := range whisperLanguages {
		nameIndex[strings.ToLower(name)] = code
	}
	for name, code := range aliases {
		nameIndex[name] = code
	}
}

// Normalize turns a provider language label into an ISO code. Labels it
// does not recognise yield "".
func Normalize(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return ""
	}
	if _, ok := whisperLanguages[l]; ok {
		return l
	}
	return nameIndex[l]
}

// FromCode returns the Language for code and whether it is known.
func FromCode(code string) (Language, bool) {
	name, ok := whisperLanguages[code]
	if !ok {
		return Language{}, false
	}
	return Language{Code: code, Name: name}, true
}

// DisplayName renders a code for humans, e.g. "English (en)". Unknown codes
// are returned as is and the empty code reads "unknown".
func DisplayName(code string) string {
	if code == "" {
		return "unknown"
	}
	if lang, ok := FromCode(code); ok {
		return lang.Name + " (" + lang.Code + ")"
	}
	return code
}

// List returns all languages sorted by code.
func List() []Language {
	result := make([]Language, 0, len(whisperLanguages))
	for code, name := range whisperLanguages {
		result = append(result, Language{Code: code, Name: name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}
