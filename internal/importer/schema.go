package importer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hokuro/spotd/internal/spot"
)

// Locale identifies which of the two supported header conventions a file
// uses. The ruleset for a locale is selected once at header-detection time
// and threaded through every row-mapping call.
type Locale string

const (
	LocaleJA Locale = "ja"
	LocaleEN Locale = "en"
)

// ErrUnknownHeader is the fatal error returned when the header row matches
// neither convention. Without a recognized header there is no schema to
// validate against, so the whole import is rejected before any row runs.
var ErrUnknownHeader = errors.New(`no recognized header row: expected a "スポット名" or "spot_name" column`)

// columns names the header cells for one locale, in canonical field order.
type columns struct {
	Name          string
	Latitude      string
	Longitude     string
	Prefecture    string
	Address       string
	SpotType      string
	HasRoof       string
	HasPower      string
	PricePerNight string
	Restrictions  string
	Amenities     string
	Notes         string
}

// messages holds the locale-specific validation message templates. Each
// takes the offending column name (and sometimes the raw value).
type messages struct {
	required    string // col
	notANumber  string // col, value
	outOfRange  string // col, value
	badSpotType string // col, value
	badBool     string // col, value
	duplicateOf string // existing name, distance in meters
}

// Schema is the validation ruleset and field-name mapping for one locale.
type Schema struct {
	Locale Locale

	// Marker is the column whose presence selects this schema. It is
	// unique to the locale's convention.
	Marker string

	cols      columns
	trueTok   string
	falseTok  string
	spotTypes map[string]spot.Type
	msg       messages
}

var schemaJA = &Schema{
	Locale: LocaleJA,
	Marker: "スポット名",
	cols: columns{
		Name:          "スポット名",
		Latitude:      "緯度",
		Longitude:     "経度",
		Prefecture:    "都道府県",
		Address:       "住所",
		SpotType:      "スポット種別",
		HasRoof:       "屋根あり",
		HasPower:      "電源あり",
		PricePerNight: "一泊料金",
		Restrictions:  "利用制限",
		Amenities:     "設備",
		Notes:         "備考",
	},
	trueTok:  "はい",
	falseTok: "いいえ",
	spotTypes: map[string]spot.Type{
		"駐車場":   spot.TypeParkingLot,
		"道の駅":   spot.TypeRoadsideStation,
		"RVパーク": spot.TypeRVPark,
		"キャンプ場": spot.TypeCampground,
		"その他":   spot.TypeOther,
	},
	msg: messages{
		required:    "%s: 必須項目が入力されていません",
		notANumber:  "%s: 数値として解釈できません: %q",
		outOfRange:  "%s: 値が範囲外です: %q",
		badSpotType: "%s: 不明なスポット種別です: %q",
		badBool:     "%s: 「はい」または「いいえ」を指定してください: %q",
		duplicateOf: "既存スポット「%s」と重複しています（約%.0fm）",
	},
}

var schemaEN = &Schema{
	Locale: LocaleEN,
	Marker: "spot_name",
	cols: columns{
		Name:          "spot_name",
		Latitude:      "latitude",
		Longitude:     "longitude",
		Prefecture:    "prefecture",
		Address:       "address",
		SpotType:      "spot_type",
		HasRoof:       "has_roof",
		HasPower:      "has_power",
		PricePerNight: "price_per_night",
		Restrictions:  "restrictions",
		Amenities:     "amenities",
		Notes:         "notes",
	},
	trueTok:  "true",
	falseTok: "false",
	spotTypes: map[string]spot.Type{
		"parking_lot":      spot.TypeParkingLot,
		"roadside_station": spot.TypeRoadsideStation,
		"rv_park":          spot.TypeRVPark,
		"campground":       spot.TypeCampground,
		"other":            spot.TypeOther,
	},
	msg: messages{
		required:    "%s: required field is empty",
		notANumber:  "%s: not a valid number: %q",
		outOfRange:  "%s: value out of range: %q",
		badSpotType: "%s: unknown spot type: %q",
		badBool:     "%s: expected true or false: %q",
		duplicateOf: "duplicate of existing spot %q (about %.0fm away)",
	},
}

// schemas is ordered: the first schema whose marker appears in the header
// row wins.
var schemas = []*Schema{schemaJA, schemaEN}

// DetectLocale inspects the header row and returns the matching schema,
// or ErrUnknownHeader if neither convention's marker column is present.
func DetectLocale(headers []string) (*Schema, error) {
	for _, s := range schemas {
		for _, h := range headers {
			if h == s.Marker {
				return s, nil
			}
		}
	}
	return nil, ErrUnknownHeader
}

// SchemaFor returns the schema for a known locale tag. It is used by the
// template/export handlers, which let the caller pick a convention
// directly instead of detecting one.
func SchemaFor(locale Locale) (*Schema, bool) {
	for _, s := range schemas {
		if s.Locale == locale {
			return s, true
		}
	}
	return nil, false
}

// Columns returns the schema's header cells in canonical field order.
func (s *Schema) Columns() []string {
	c := s.cols
	return []string{
		c.Name, c.Latitude, c.Longitude, c.Prefecture, c.Address, c.SpotType,
		c.HasRoof, c.HasPower, c.PricePerNight, c.Restrictions, c.Amenities, c.Notes,
	}
}

// FormatRow renders a stored spot as one data row in the schema's
// convention, matching Columns order. It is the inverse of MapRow for the
// export surface; SubmittedBy is intentionally absent from the file format.
func (s *Schema) FormatRow(sp *spot.Spot) []string {
	return []string{
		sp.Name,
		strconv.FormatFloat(sp.Coordinates[1], 'f', -1, 64),
		strconv.FormatFloat(sp.Coordinates[0], 'f', -1, 64),
		sp.Prefecture,
		sp.Address,
		s.typeLabel(sp.SpotType),
		s.boolToken(sp.HasRoof),
		s.boolToken(sp.HasPower),
		strconv.FormatFloat(sp.PricePerNight, 'f', -1, 64),
		strings.Join(sp.Restrictions, ","),
		strings.Join(sp.Amenities, ","),
		sp.Notes,
	}
}

func (s *Schema) typeLabel(t spot.Type) string {
	for label, typ := range s.spotTypes {
		if typ == t {
			return label
		}
	}
	return string(t)
}

func (s *Schema) boolToken(b bool) string {
	if b {
		return s.trueTok
	}
	return s.falseTok
}

// ValidationError is a per-row mapping failure. It carries the offending
// column name and a message in the file's own locale so the reporter can
// hand it straight back to the uploader.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// rowLookup resolves header names to a row's positional values. Short rows
// read as empty strings for their missing trailing columns.
type rowLookup struct {
	index map[string]int
	row   []string
}

func newRowLookup(headers, row []string) rowLookup {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return rowLookup{index: idx, row: row}
}

func (l rowLookup) get(col string) string {
	pos, ok := l.index[col]
	if !ok || pos >= len(l.row) {
		return ""
	}
	return strings.TrimSpace(l.row[pos])
}

// MapRow validates one data row against the schema and produces a
// canonical candidate. Mapping stops at the first violation so every
// reported error has a single cause.
//
// SubmittedBy is always taken from the caller-supplied actor, never from
// the row: the row cannot claim an identity.
func (s *Schema) MapRow(headers, row []string, actor string) (*spot.Candidate, *ValidationError) {
	l := newRowLookup(headers, row)

	name := l.get(s.cols.Name)
	if name == "" {
		return nil, s.errRequired(s.cols.Name)
	}

	lat, verr := s.parseCoord(l, s.cols.Latitude, 90)
	if verr != nil {
		return nil, verr
	}
	lng, verr := s.parseCoord(l, s.cols.Longitude, 180)
	if verr != nil {
		return nil, verr
	}

	rawType := l.get(s.cols.SpotType)
	if rawType == "" {
		return nil, s.errRequired(s.cols.SpotType)
	}
	spotType, ok := s.spotTypes[rawType]
	if !ok {
		return nil, &ValidationError{
			Field:   s.cols.SpotType,
			Message: fmt.Sprintf(s.msg.badSpotType, s.cols.SpotType, rawType),
		}
	}

	hasRoof, verr := s.parseBool(l, s.cols.HasRoof)
	if verr != nil {
		return nil, verr
	}
	hasPower, verr := s.parseBool(l, s.cols.HasPower)
	if verr != nil {
		return nil, verr
	}

	price := 0.0
	if raw := l.get(s.cols.PricePerNight); raw != "" {
		price, verr = s.parseNumber(s.cols.PricePerNight, raw)
		if verr != nil {
			return nil, verr
		}
	}

	return &spot.Candidate{
		Name:          name,
		Coordinates:   [2]float64{lng, lat},
		Prefecture:    l.get(s.cols.Prefecture),
		Address:       l.get(s.cols.Address),
		SpotType:      spotType,
		HasRoof:       hasRoof,
		HasPower:      hasPower,
		PricePerNight: price,
		Restrictions:  splitList(l.get(s.cols.Restrictions)),
		Amenities:     splitList(l.get(s.cols.Amenities)),
		Notes:         l.get(s.cols.Notes),
		SubmittedBy:   actor,
	}, nil
}

// DuplicateMessage formats the per-row error for a rejected duplicate in
// the schema's locale.
func (s *Schema) DuplicateMessage(existingName string, distanceM float64) string {
	return fmt.Sprintf(s.msg.duplicateOf, existingName, distanceM)
}

func (s *Schema) errRequired(col string) *ValidationError {
	return &ValidationError{Field: col, Message: fmt.Sprintf(s.msg.required, col)}
}

// parseCoord parses a required coordinate column and checks it against
// ±bound degrees. ParseFloat accepts "NaN" and "Inf" spellings, and NaN
// compares false against any bound, so non-finite values need an explicit
// rejection or they would sail through the range check.
func (s *Schema) parseCoord(l rowLookup, col string, bound float64) (float64, *ValidationError) {
	raw := l.get(col)
	if raw == "" {
		return 0, s.errRequired(col)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: col, Message: fmt.Sprintf(s.msg.notANumber, col, raw)}
	}
	if math.IsNaN(v) || v < -bound || v > bound {
		return 0, &ValidationError{Field: col, Message: fmt.Sprintf(s.msg.outOfRange, col, raw)}
	}
	return v, nil
}

func (s *Schema) parseNumber(col, raw string) (float64, *ValidationError) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: col, Message: fmt.Sprintf(s.msg.notANumber, col, raw)}
	}
	return v, nil
}

// parseBool accepts only the locale's true/false token pair; blank
// defaults to false.
func (s *Schema) parseBool(l rowLookup, col string) (bool, *ValidationError) {
	raw := l.get(col)
	switch raw {
	case "":
		return false, nil
	case s.trueTok:
		return true, nil
	case s.falseTok:
		return false, nil
	default:
		return false, &ValidationError{Field: col, Message: fmt.Sprintf(s.msg.badBool, col, raw)}
	}
}

// splitList splits a comma-separated cell into trimmed, non-empty items.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
