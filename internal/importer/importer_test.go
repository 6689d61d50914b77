package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

const headerEN = "spot_name,latitude,longitude,prefecture,address,spot_type,has_roof,has_power,price_per_night,restrictions,amenities,notes"

// rowEN builds a minimal valid English-convention data row.
func rowEN(name, lat, lng string) string {
	return fmt.Sprintf("%s,%s,%s,Nagano,,parking_lot,,,,,,", name, lat, lng)
}

func TestRunHappyPath(t *testing.T) {
	store := newMemStore()
	imp := New(store, DefaultPolicy())

	// Spots spaced ~1.1km apart so they never collide.
	file := headerEN + "\n" +
		rowEN("Spot A", "35.00", "139.0") + "\n" +
		rowEN("Spot B", "35.01", "139.0") + "\n" +
		rowEN("Spot C", "35.02", "139.0")

	result, err := imp.Run(context.Background(), file, "admin@example.com")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.SuccessCount != 3 {
		t.Errorf("successCount = %d, want 3", result.SuccessCount)
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %+v, want none", result.Errors)
	}
	if len(store.spots) != 3 {
		t.Errorf("store has %d spots, want 3", len(store.spots))
	}
}

func TestRunRowErrorAccounting(t *testing.T) {
	// 100 data rows; row 42 (file line 43, header is line 1) has a
	// non-numeric latitude. Everything else must still insert.
	var b strings.Builder
	b.WriteString(headerEN)
	for i := 0; i < 100; i++ {
		lat := fmt.Sprintf("%.4f", 35.0+float64(i)*0.01)
		if i == 41 {
			lat = "north-ish"
		}
		b.WriteString("\n" + rowEN(fmt.Sprintf("Spot %03d", i), lat, "139.0"))
	}

	imp := New(newMemStore(), DefaultPolicy())
	result, err := imp.Run(context.Background(), b.String(), "admin")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.SuccessCount != 99 {
		t.Errorf("successCount = %d, want 99", result.SuccessCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %+v, want exactly one", result.Errors)
	}
	re := result.Errors[0]
	if re.Row != 43 {
		t.Errorf("error row = %d, want 43", re.Row)
	}
	if !strings.Contains(re.Err, "latitude") {
		t.Errorf("error %q does not reference the coordinate field", re.Err)
	}
	if !strings.Contains(re.RawData, "north-ish") {
		t.Errorf("rawData %q does not carry the original row", re.RawData)
	}
}

func TestRunSelfDeduplication(t *testing.T) {
	// Two rows describing the same new spot. The second row's duplicate
	// check must see the first row's just-committed insert.
	file := headerEN + "\n" +
		rowEN("Lakeview Lot", "35.0000", "139.0000") + "\n" +
		rowEN("Lakeview Lot", "35.00005", "139.0000")

	imp := New(newMemStore(), DefaultPolicy())
	result, err := imp.Run(context.Background(), file, "admin")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.SuccessCount != 1 {
		t.Errorf("successCount = %d, want 1", result.SuccessCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %+v, want exactly one", result.Errors)
	}
	re := result.Errors[0]
	if re.Row != 3 {
		t.Errorf("error row = %d, want 3", re.Row)
	}
	if !strings.Contains(re.Err, "Lakeview Lot") {
		t.Errorf("error %q does not cite the conflicting spot", re.Err)
	}
}

func TestRunNaNCoordinatesRejected(t *testing.T) {
	// ParseFloat accepts "NaN", and a NaN coordinate would poison the
	// duplicate rule (NaN distance is never within any radius), so both
	// rows here must die in validation and neither may reach the store.
	store := newMemStore()
	imp := New(store, DefaultPolicy())

	file := headerEN + "\n" +
		rowEN("Ghost Lot", "NaN", "139.0") + "\n" +
		rowEN("Ghost Lot", "NaN", "139.0")

	result, err := imp.Run(context.Background(), file, "admin")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.SuccessCount != 0 {
		t.Errorf("successCount = %d, want 0", result.SuccessCount)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %+v, want one per row", result.Errors)
	}
	for _, re := range result.Errors {
		if !strings.Contains(re.Err, "latitude") {
			t.Errorf("error %q does not reference the coordinate field", re.Err)
		}
	}
	if len(store.spots) != 0 {
		t.Errorf("store has %d spots, want 0", len(store.spots))
	}
}

func TestRunHeaderOnly(t *testing.T) {
	imp := New(newMemStore(), DefaultPolicy())
	result, err := imp.Run(context.Background(), headerEN, "admin")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.SuccessCount != 0 || len(result.Errors) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if result.Errors == nil {
		t.Error("errors should be an empty slice, not nil")
	}
}

func TestRunEmptyFile(t *testing.T) {
	imp := New(newMemStore(), DefaultPolicy())
	result, err := imp.Run(context.Background(), "", "admin")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.SuccessCount != 0 || len(result.Errors) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestRunUnknownHeaderIsFatal(t *testing.T) {
	imp := New(newMemStore(), DefaultPolicy())
	_, err := imp.Run(context.Background(), "title,lat,lon\nA,35.0,139.0", "admin")
	if !errors.Is(err, ErrUnknownHeader) {
		t.Errorf("Run() error = %v, want ErrUnknownHeader", err)
	}
}

func TestRunInsertFailureIsPerRow(t *testing.T) {
	store := newMemStore()
	store.failInsert("Spot B", "value too long for column")

	file := headerEN + "\n" +
		rowEN("Spot A", "35.00", "139.0") + "\n" +
		rowEN("Spot B", "35.01", "139.0") + "\n" +
		rowEN("Spot C", "35.02", "139.0")

	imp := New(store, DefaultPolicy())
	result, err := imp.Run(context.Background(), file, "admin")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.SuccessCount != 2 {
		t.Errorf("successCount = %d, want 2", result.SuccessCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 {
		t.Fatalf("errors = %+v, want one at row 3", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Err, "value too long") {
		t.Errorf("error %q should carry the store's message", result.Errors[0].Err)
	}
}

func TestRunJapaneseFile(t *testing.T) {
	file := "スポット名,緯度,経度,都道府県,住所,スポット種別,屋根あり,電源あり,一泊料金,利用制限,設備,備考\n" +
		"みとみ湖畔駐車場,35.85,138.72,山梨県,山梨市三富,道の駅,いいえ,はい,0,,トイレ,静かな場所"

	store := newMemStore()
	imp := New(store, DefaultPolicy())
	result, err := imp.Run(context.Background(), file, "管理者")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.SuccessCount != 1 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v, want one clean insert", result)
	}
	if store.spots[0].Name != "みとみ湖畔駐車場" {
		t.Errorf("stored name = %q", store.spots[0].Name)
	}
}

func TestRunJapaneseDuplicateMessage(t *testing.T) {
	header := "スポット名,緯度,経度,スポット種別"
	file := header + "\n" +
		"湖畔駐車場,35.0,139.0,駐車場\n" +
		"湖畔駐車場,35.0,139.0,駐車場"

	imp := New(newMemStore(), DefaultPolicy())
	result, err := imp.Run(context.Background(), file, "管理者")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %+v, want one", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Err, "重複") {
		t.Errorf("duplicate message %q should be in the file's locale", result.Errors[0].Err)
	}
}

func TestRunQuotedFieldsSurviveThePipeline(t *testing.T) {
	file := headerEN + "\n" +
		`"Lakeside, North Gate",35.0,139.0,Nagano,"1-2-3 ""Lakeview"" Blvd",parking_lot,,,,,` + ","

	store := newMemStore()
	imp := New(store, DefaultPolicy())
	result, err := imp.Run(context.Background(), file, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if result.SuccessCount != 1 {
		t.Fatalf("result = %+v, want one insert", result)
	}
	if store.spots[0].Name != "Lakeside, North Gate" {
		t.Errorf("stored name = %q, embedded comma was mangled", store.spots[0].Name)
	}
}
