package ephemeris

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/ar"
	"github.com/rickar/cal/v2/at"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/be"
	"github.com/rickar/cal/v2/bg"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/ch"
	"github.com/rickar/cal/v2/cy"
	"github.com/rickar/cal/v2/cz"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/dk"
	"github.com/rickar/cal/v2/ee"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fi"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/gr"
	"github.com/rickar/cal/v2/hr"
	"github.com/rickar/cal/v2/hu"
	"github.com/rickar/cal/v2/ie"
	"github.com/rickar/cal/v2/is"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/ke"
	"github.com/rickar/cal/v2/lt"
	"github.com/rickar/cal/v2/lu"
	"github.com/rickar/cal/v2/lv"
	"github.com/rickar/cal/v2/mt"
	"github.com/rickar/cal/v2/mw"
	"github.com/rickar/cal/v2/mx"
	"github.com/rickar/cal/v2/nc"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/no"
	"github.com/rickar/cal/v2/nz"
	"github.com/rickar/cal/v2/pl"
	"github.com/rickar/cal/v2/pt"
	"github.com/rickar/cal/v2/ro"
	"github.com/rickar/cal/v2/rs"
	"github.com/rickar/cal/v2/ru"
	"github.com/rickar/cal/v2/se"
	"github.com/rickar/cal/v2/si"
	"github.com/rickar/cal/v2/sk"
	"github.com/rickar/cal/v2/th"
	"github.com/rickar/cal/v2/ua"
	"github.com/rickar/cal/v2/us"
	"github.com/rickar/cal/v2/za"
)

// countryCalendar holds the holiday lists of a country. Region lists are
// complete calendars of an ISO 3166-2 subdivision; city lists are extras
// added on top of their region.
type countryCalendar struct {
	holidays []*cal.Holiday
	regions  map[string][]*cal.Holiday
	cities   map[string]map[string][]*cal.Holiday
}

// countryCalendars is keyed by lower-case ISO 3166 alpha-2 code.
var countryCalendars = map[string]countryCalendar{
	"ar": {holidays: ar.Holidays},
	"at": {holidays: at.Holidays},
	"au": {
		holidays: shared(au.HolidaysACT, au.HolidaysNSW, au.HolidaysNT, au.HolidaysQLD,
			au.HolidaysSA, au.HolidaysTAS, au.HolidaysVIC, au.HolidaysWA),
		regions: map[string][]*cal.Holiday{
			"act": au.HolidaysACT,
			"nsw": au.HolidaysNSW,
			"nt":  au.HolidaysNT,
			"qld": au.HolidaysQLD,
			"sa":  au.HolidaysSA,
			"tas": au.HolidaysTAS,
			"vic": au.HolidaysVIC,
			"wa":  au.HolidaysWA,
		},
	},
	"be": {holidays: be.Holidays},
	"bg": {holidays: bg.Holidays},
	"br": {holidays: br.Holidays},
	"ca": {holidays: ca.Holidays},
	"ch": {
		holidays: ch.Holidays,
		regions: map[string][]*cal.Holiday{
			"ag": ch.HolidaysAG,
			"ai": ch.HolidaysAI,
			"ar": ch.HolidaysAR,
			"be": ch.HolidaysBE,
			"bl": ch.HolidaysBL,
			"bs": ch.HolidaysBS,
			"fr": ch.HolidaysFR,
			"ge": ch.HolidaysGE,
			"gl": ch.HolidaysGL,
			"gr": ch.HolidaysGR,
			"ju": ch.HolidaysJU,
			"lu": ch.HolidaysLU,
			"ne": ch.HolidaysNE,
			"nw": ch.HolidaysNW,
			"ow": ch.HolidaysOW,
			"sg": ch.HolidaysSG,
			"sh": ch.HolidaysSH,
			"so": ch.HolidaysSO,
			"sz": ch.HolidaysSZ,
			"tg": ch.HolidaysTG,
			"ti": ch.HolidaysTI,
			"ur": ch.HolidaysUR,
			"vd": ch.HolidaysVD,
			"vs": ch.HolidaysVS,
			"zg": ch.HolidaysZG,
			"zh": ch.HolidaysZH,
		},
	},
	"cy": {holidays: cy.Holidays},
	"cz": {holidays: cz.Holidays},
	"de": {
		holidays: de.Holidays,
		regions: map[string][]*cal.Holiday{
			"bb": de.HolidaysBB,
			"be": de.HolidaysBE,
			"bw": de.HolidaysBW,
			"by": de.HolidaysBY,
			"hb": de.HolidaysHB,
			"he": de.HolidaysHE,
			"hh": de.HolidaysHH,
			"mv": de.HolidaysMV,
			"ni": de.HolidaysNI,
			"nw": de.HolidaysNW,
			"rp": de.HolidaysRP,
			"sh": de.HolidaysSH,
			"sl": de.HolidaysSL,
			"sn": de.HolidaysSN,
			"st": de.HolidaysST,
			"th": de.HolidaysTH,
		},
		cities: map[string]map[string][]*cal.Holiday{
			"by": {"augsburg": {de.Friedensfest}},
		},
	},
	"dk": {holidays: dk.Holidays},
	"ee": {holidays: ee.Holidays},
	"es": {holidays: es.Holidays},
	"fi": {holidays: fi.Holidays},
	"fr": {holidays: fr.Holidays},
	"gb": {holidays: gb.Holidays},
	"gr": {holidays: gr.Holidays},
	"hr": {holidays: hr.Holidays},
	"hu": {holidays: hu.Holidays},
	"ie": {holidays: ie.Holidays},
	"is": {holidays: is.Holidays},
	"it": {holidays: it.Holidays},
	"jp": {holidays: jp.Holidays},
	"ke": {holidays: ke.Holidays},
	"lt": {holidays: lt.Holidays},
	"lu": {holidays: lu.Holidays},
	"lv": {holidays: lv.Holidays},
	"mt": {holidays: mt.Holidays},
	"mw": {holidays: mw.Holidays},
	"mx": {holidays: mx.Holidays},
	"nc": {holidays: nc.Holidays},
	"nl": {holidays: nl.Holidays},
	"no": {holidays: no.Holidays},
	"nz": {holidays: nz.Holidays},
	"pl": {holidays: pl.Holidays},
	"pt": {holidays: pt.Holidays},
	"ro": {holidays: ro.Holidays},
	"rs": {holidays: rs.Holidays},
	"ru": {holidays: ru.Holidays},
	"se": {holidays: se.Holidays},
	"si": {holidays: si.Holidays},
	"sk": {holidays: sk.Holidays},
	"th": {holidays: th.Holidays},
	"ua": {holidays: ua.Holidays},
	"us": {holidays: us.Holidays},
	"za": {holidays: za.Holidays},
}

// countryAliases maps alternative codes onto countryCalendars keys.
var countryAliases = map[string]string{
	"uk": "gb",
}

// shared returns the holidays present in every list, in the order of the
// first. It gives countries published only per subdivision a national list.
func shared(lists ...[]*cal.Holiday) []*cal.Holiday {
	if len(lists) == 0 {
		return nil
	}
	var common []*cal.Holiday
	for _, h := range lists[0] {
		everywhere := true
		for _, l := range lists[1:] {
			if !slices.Contains(l, h) {
				everywhere = false
				break
			}
		}
		if everywhere {
			common = append(common, h)
		}
	}
	return common
}

// Countries returns the supported country codes, sorted.
func Countries() []string {
	codes := make([]string, 0, len(countryCalendars))
	for code := range countryCalendars {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Regions returns the subdivision codes of a country, sorted. Countries
// without regional calendars yield nil.
func Regions(country string) []string {
	c, ok := countryCalendars[normalizeCountry(country)]
	if !ok || len(c.regions) == 0 {
		return nil
	}
	codes := make([]string, 0, len(c.regions))
	for code := range c.regions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func normalizeCountry(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if alias, ok := countryAliases[c]; ok {
		return alias
	}
	return c
}

// NewCountryManager builds the holiday manager of a country: one calendar
// for the country, one per region and one per city.
func NewCountryManager(code string) (*HolidayManager, error) {
	c := normalizeCountry(code)
	def, ok := countryCalendars[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}

	m := &HolidayManager{
		source:  "country:" + c,
		base:    newCalendar(def.holidays),
		regions: make(map[string]*cal.BusinessCalendar, len(def.regions)),
		cities:  make(map[string]map[string]*cal.BusinessCalendar, len(def.cities)),
	}
	for region, holidays := range def.regions {
		m.regions[region] = newCalendar(holidays)
	}
	for region, cities := range def.cities {
		m.cities[region] = make(map[string]*cal.BusinessCalendar, len(cities))
		for city, extras := range cities {
			m.cities[region][city] = newCalendar(slices.Concat(def.regions[region], extras))
		}
	}
	return m, nil
}
