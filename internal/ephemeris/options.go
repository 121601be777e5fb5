package ephemeris

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// ConfigURI identifies the ephemeris configuration schema.
const ConfigURI = "system:ephemeris"

// ParameterOption is one selectable value of a configuration parameter.
type ParameterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// labelLocales pairs the languages offered for weekday labels with their
// monday locale. The first entry is the fallback.
var labelLocales = []struct {
	tag    language.Tag
	locale monday.Locale
}{
	{language.English, monday.LocaleEnUS},
	{language.German, monday.LocaleDeDE},
	{language.French, monday.LocaleFrFR},
	{language.Dutch, monday.LocaleNlNL},
	{language.Spanish, monday.LocaleEsES},
	{language.Italian, monday.LocaleItIT},
	{language.Portuguese, monday.LocalePtPT},
	{language.Danish, monday.LocaleDaDK},
	{language.Swedish, monday.LocaleSvSE},
	{language.Norwegian, monday.LocaleNbNO},
	{language.Finnish, monday.LocaleFiFI},
	{language.Polish, monday.LocalePlPL},
	{language.Czech, monday.LocaleCsCZ},
}

var labelMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(labelLocales))
	for i, l := range labelLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// labelMonday is a Monday; weekday labels are formatted from the days after it.
var labelMonday = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func weekdayLabel(d time.Weekday, locale monday.Locale) string {
	return monday.Format(labelMonday.AddDate(0, 0, (int(d)+6)%7), "Monday", locale)
}

// Locale returns the site locale.
func (s *Service) Locale() language.Tag {
	return s.locale
}

// GetParameterOptions lists the weekday options of the ephemeris
// configuration, labelled in locale. An empty locale selects the site
// locale; an unparsable one falls back to English. Any other uri yields nil.
func (s *Service) GetParameterOptions(uri, param, locale string) []ParameterOption {
	if uri != ConfigURI {
		return nil
	}

	tag := s.locale
	if strings.TrimSpace(locale) != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			s.logger.Debug("unparsable option locale", "locale", locale, "param", param, "error", err)
			parsed = language.English
		}
		tag = parsed
	}

	_, idx, _ := labelMatcher.Match(tag)
	loc := labelLocales[idx].locale

	options := make([]ParameterOption, 0, len(weekOrder))
	for _, d := range weekOrder {
		options = append(options, ParameterOption{Value: WeekdayName(d), Label: weekdayLabel(d, loc)})
	}
	return options
}
