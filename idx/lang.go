/*
NAME
  lang.go - built-in ISO-639-1 language table used to validate and emit the
  two-letter codes carried by .idx "id:" lines.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package idx

// Language describes one row of the built-in language table: an
// ISO-639-1 two-letter code and its English name.
type Language struct {
	Name string
	Code string
}

// Languages is the built-in (english_name, iso_639_1_code) table used to
// validate "id:" codes on read and to emit a language name/code pair on
// write (§6.5). It is not exhaustive of ISO-639-1, but covers the
// languages that commonly appear on retail DVDs.
var Languages = []Language{
	{"English", "en"},
	{"French", "fr"},
	{"German", "de"},
	{"Spanish", "es"},
	{"Italian", "it"},
	{"Dutch", "nl"},
	{"Portuguese", "pt"},
	{"Swedish", "sv"},
	{"Norwegian", "no"},
	{"Danish", "da"},
	{"Finnish", "fi"},
	{"Polish", "pl"},
	{"Russian", "ru"},
	{"Japanese", "ja"},
	{"Chinese", "zh"},
	{"Korean", "ko"},
	{"Greek", "el"},
	{"Turkish", "tr"},
	{"Arabic", "ar"},
	{"Hebrew", "he"},
	{"Czech", "cs"},
	{"Hungarian", "hu"},
	{"Romanian", "ro"},
	{"Thai", "th"},
	{"Icelandic", "is"},
	{"Croatian", "hr"},
	{"Slovak", "sk"},
	{"Slovenian", "sl"},
	{"Bulgarian", "bg"},
	{"Ukrainian", "uk"},
}

// LookupCode returns the Language with the given ISO-639-1 code and true, or
// the zero Language and false if code is not in the built-in table.
func LookupCode(code string) (Language, bool) {
	for _, l := range Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// LookupIndex returns the Language at position idx in the built-in table
// used for emission when writing a hardcoded language row (§6.5), and true
// if idx is in range.
func LookupIndex(idx int) (Language, bool) {
	if idx < 0 || idx >= len(Languages) {
		return Language{}, false
	}
	return Languages[idx], true
}
