package listingapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"carmine/internal/domain"

	"github.com/shopspring/decimal"
)

// flexString accepts a JSON string or a bare JSON scalar. The provider is not
// consistent about quoting ids, years and numeric fields.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// rawListing is a record as the provider sends it.
type rawListing struct {
	ID              flexString `json:"id"`
	Make            flexString `json:"make"`
	Model           flexString `json:"model"`
	Year            flexString `json:"year"`
	Trim            flexString `json:"trim"`
	Price           flexString `json:"price"`
	Mileage         flexString `json:"mileage"`
	PrimaryPhotoURL flexString `json:"primaryPhotoUrl"`
	CreatedAt       flexString `json:"createdAt"`
}

type listingsResponse struct {
	Records []rawListing `json:"records"`
}

var priceReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// ParsePrice turns "$24,500" into 24500. Anything unparseable is zero.
func ParsePrice(s string) decimal.Decimal {
	v, err := decimal.NewFromString(priceReplacer.Replace(strings.TrimSpace(s)))
	if err != nil {
		return decimal.Zero
	}
	return v
}

var mileageReplacer = strings.NewReplacer("Miles", "", "miles", "", ",", "", " ", "")

// ParseMileage turns "12,345 Miles" into 12345. Fractions are truncated and
// anything unparseable, negative or out of range is zero.
func ParseMileage(s string) int {
	v, err := strconv.ParseFloat(mileageReplacer.Replace(strings.TrimSpace(s)), 64)
	if err != nil || math.IsNaN(v) || v < 0 || v >= math.MaxInt32+1 {
		return 0
	}
	return int(v)
}

func parseYear(s string) int {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return y
}

func parseListedDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// toDomain maps a provider record onto a Listing. It never fails: fields the
// provider formats badly come out as zero values.
func (r rawListing) toDomain() domain.Listing {
	return domain.Listing{
		ID:         string(r.ID),
		Make:       string(r.Make),
		Model:      string(r.Model),
		Year:       parseYear(string(r.Year)),
		Trim:       string(r.Trim),
		Price:      ParsePrice(string(r.Price)),
		Mileage:    ParseMileage(string(r.Mileage)),
		ImageURL:   string(r.PrimaryPhotoURL),
		ListedDate: parseListedDate(string(r.CreatedAt)),
	}
}
