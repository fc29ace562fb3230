package providers

// countryCodes maps a semantic language code to the provider-side
// country/locale code, exactly the mapping serper_api.py's
// _get_country_code builds (gl parameter).
var countryCodes = map[string]string{
	"pt": "br",
	"en": "us",
	"es": "es",
	"fr": "fr",
	"de": "de",
	"it": "it",
	"ar": "sa",
	"ko": "kr",
	"he": "il",
	"ja": "jp",
}

// CountryCode translates a language code into a provider country code,
// defaulting to "us" for anything not in the known set.
func CountryCode(language string) string {
	if cc, ok := countryCodes[language]; ok {
		return cc
	}
	return "us"
}
