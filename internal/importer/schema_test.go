package importer

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hokuro/spotd/internal/spot"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Locale
		wantErr bool
	}{
		{
			name:    "japanese convention",
			headers: []string{"スポット名", "緯度", "経度"},
			want:    LocaleJA,
		},
		{
			name:    "english convention",
			headers: []string{"spot_name", "latitude", "longitude"},
			want:    LocaleEN,
		},
		{
			name:    "marker position does not matter",
			headers: []string{"notes", "latitude", "spot_name"},
			want:    LocaleEN,
		},
		{
			name:    "unknown header is fatal",
			headers: []string{"title", "lat", "lon"},
			wantErr: true,
		},
		{
			name:    "empty header is fatal",
			headers: []string{""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DetectLocale(tt.headers)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownHeader) {
					t.Fatalf("DetectLocale() error = %v, want ErrUnknownHeader", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectLocale() unexpected error: %v", err)
			}
			if s.Locale != tt.want {
				t.Errorf("DetectLocale() locale = %v, want %v", s.Locale, tt.want)
			}
		})
	}
}

func TestMapRowEnglish(t *testing.T) {
	headers := []string{
		"spot_name", "latitude", "longitude", "prefecture", "address", "spot_type",
		"has_roof", "has_power", "price_per_night", "restrictions", "amenities", "notes",
	}
	schema, err := DetectLocale(headers)
	if err != nil {
		t.Fatal(err)
	}

	row := []string{
		"Lakeview Lot", "35.0", "139.0", "Nagano", "1-2-3 Lakeside", "parking_lot",
		"true", "false", "1200", "no open fires, quiet after 22:00", "toilet,vending machine", "gravel surface",
	}

	cand, verr := schema.MapRow(headers, row, "admin@example.com")
	if verr != nil {
		t.Fatalf("MapRow() unexpected validation error: %v", verr)
	}

	want := &spot.Candidate{
		Name:          "Lakeview Lot",
		Coordinates:   [2]float64{139.0, 35.0},
		Prefecture:    "Nagano",
		Address:       "1-2-3 Lakeside",
		SpotType:      spot.TypeParkingLot,
		HasRoof:       true,
		HasPower:      false,
		PricePerNight: 1200,
		Restrictions:  []string{"no open fires", "quiet after 22:00"},
		Amenities:     []string{"toilet", "vending machine"},
		Notes:         "gravel surface",
		SubmittedBy:   "admin@example.com",
	}
	if !reflect.DeepEqual(cand, want) {
		t.Errorf("MapRow() = %+v, want %+v", cand, want)
	}
}

func TestMapRowJapanese(t *testing.T) {
	headers := []string{
		"スポット名", "緯度", "経度", "都道府県", "住所", "スポット種別",
		"屋根あり", "電源あり", "一泊料金", "利用制限", "設備", "備考",
	}
	schema, err := DetectLocale(headers)
	if err != nil {
		t.Fatal(err)
	}

	row := []string{
		"みとみ湖畔駐車場", "35.85", "138.72", "山梨県", "山梨市三富", "道の駅",
		"いいえ", "はい", "0", "", "トイレ,自販機", "",
	}

	cand, verr := schema.MapRow(headers, row, "admin")
	if verr != nil {
		t.Fatalf("MapRow() unexpected validation error: %v", verr)
	}
	if cand.Name != "みとみ湖畔駐車場" {
		t.Errorf("name = %q", cand.Name)
	}
	if cand.SpotType != spot.TypeRoadsideStation {
		t.Errorf("spot type = %v, want roadside_station", cand.SpotType)
	}
	if cand.HasRoof || !cand.HasPower {
		t.Errorf("bools = roof %v power %v, want false/true", cand.HasRoof, cand.HasPower)
	}
	if got := cand.Coordinates; got != [2]float64{138.72, 35.85} {
		t.Errorf("coordinates = %v (longitude must come first)", got)
	}
	if !reflect.DeepEqual(cand.Amenities, []string{"トイレ", "自販機"}) {
		t.Errorf("amenities = %v", cand.Amenities)
	}
	if cand.SubmittedBy != "admin" {
		t.Errorf("submittedBy = %q, want caller identity", cand.SubmittedBy)
	}
}

func TestMapRowValidationErrors(t *testing.T) {
	headers := []string{"spot_name", "latitude", "longitude", "spot_type", "has_roof", "price_per_night"}

	tests := []struct {
		name      string
		row       []string
		wantField string
	}{
		{
			name:      "empty name",
			row:       []string{"", "35.0", "139.0", "other", "", ""},
			wantField: "spot_name",
		},
		{
			name:      "whitespace-only name",
			row:       []string{"   ", "35.0", "139.0", "other", "", ""},
			wantField: "spot_name",
		},
		{
			name:      "non-numeric latitude",
			row:       []string{"A", "abc", "139.0", "other", "", ""},
			wantField: "latitude",
		},
		{
			name:      "latitude out of range",
			row:       []string{"A", "91.0", "139.0", "other", "", ""},
			wantField: "latitude",
		},
		{
			name:      "NaN latitude",
			row:       []string{"A", "NaN", "139.0", "other", "", ""},
			wantField: "latitude",
		},
		{
			name:      "infinite latitude",
			row:       []string{"A", "+Inf", "139.0", "other", "", ""},
			wantField: "latitude",
		},
		{
			name:      "NaN longitude",
			row:       []string{"A", "35.0", "nan", "other", "", ""},
			wantField: "longitude",
		},
		{
			name:      "negative infinite longitude",
			row:       []string{"A", "35.0", "-Inf", "other", "", ""},
			wantField: "longitude",
		},
		{
			name:      "longitude out of range",
			row:       []string{"A", "35.0", "181.0", "other", "", ""},
			wantField: "longitude",
		},
		{
			name:      "missing longitude",
			row:       []string{"A", "35.0", "", "other", "", ""},
			wantField: "longitude",
		},
		{
			name:      "unknown spot type",
			row:       []string{"A", "35.0", "139.0", "castle", "", ""},
			wantField: "spot_type",
		},
		{
			name:      "bad boolean token",
			row:       []string{"A", "35.0", "139.0", "other", "yep", ""},
			wantField: "has_roof",
		},
		{
			name:      "bad optional numeric",
			row:       []string{"A", "35.0", "139.0", "other", "", "free"},
			wantField: "price_per_night",
		},
		{
			name:      "short row reads missing columns as empty",
			row:       []string{"A", "35.0"},
			wantField: "longitude",
		},
	}

	schema, err := DetectLocale(headers)
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand, verr := schema.MapRow(headers, tt.row, "admin")
			if verr == nil {
				t.Fatalf("MapRow() = %+v, want validation error on %s", cand, tt.wantField)
			}
			if verr.Field != tt.wantField {
				t.Errorf("error field = %q, want %q", verr.Field, tt.wantField)
			}
			if !strings.Contains(verr.Message, tt.wantField) {
				t.Errorf("message %q does not name the offending column", verr.Message)
			}
		})
	}
}

func TestMapRowBlankBoolDefaultsFalse(t *testing.T) {
	headers := []string{"spot_name", "latitude", "longitude", "spot_type", "has_roof", "has_power"}
	schema, _ := DetectLocale(headers)

	cand, verr := schema.MapRow(headers, []string{"A", "35.0", "139.0", "other", "", ""}, "admin")
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if cand.HasRoof || cand.HasPower {
		t.Errorf("blank booleans should default to false, got roof=%v power=%v", cand.HasRoof, cand.HasPower)
	}
}

func TestSchemaColumnsMatchMarker(t *testing.T) {
	for _, locale := range []Locale{LocaleJA, LocaleEN} {
		s, ok := SchemaFor(locale)
		if !ok {
			t.Fatalf("SchemaFor(%v) not found", locale)
		}
		found := false
		for _, c := range s.Columns() {
			if c == s.Marker {
				found = true
			}
		}
		if !found {
			t.Errorf("locale %v: marker %q not in its own column set", locale, s.Marker)
		}
	}
}
