package landcover

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// RainFedThreshold is the water share (percent) under which land is presumed rain-fed.
const RainFedThreshold = 1.0

// ErrNoClasses is returned when a land-cover text block names no known class.
var ErrNoClasses = errors.New("no land-cover classes found")

var hundred = decimal.NewFromInt(100)

// Distribution holds the pixel count and percentage of every class.
// Pixel counts are zero when the distribution was read back from text.
type Distribution struct {
	Total    int                         `json:"total_pixels"`
	Pixels   [NumClasses]int             `json:"-"`
	Percents [NumClasses]decimal.Decimal `json:"-"`
}

// FromClassMap counts class indices, one per pixel.
func FromClassMap(classes []uint8) (*Distribution, error) {
	d := &Distribution{}
	for i, c := range classes {
		if int(c) >= NumClasses {
			return nil, fmt.Errorf("pixel %d: class index %d out of range", i, c)
		}
		d.Pixels[c]++
	}
	d.Total = len(classes)
	d.computePercents()
	return d, nil
}

// FromMask classifies every pixel of a colour mask by its nearest palette colour.
func FromMask(img image.Image) *Distribution {
	d := &Distribution{}
	cache := make(map[color.RGBA]Class)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			key := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}
			c, ok := cache[key]
			if !ok {
				c = NearestClass(key)
				cache[key] = c
			}
			d.Pixels[c]++
		}
	}
	d.Total = b.Dx() * b.Dy()
	d.computePercents()
	return d
}

func (d *Distribution) computePercents() {
	if d.Total == 0 {
		return
	}
	total := decimal.NewFromInt(int64(d.Total))
	for i, n := range d.Pixels {
		d.Percents[i] = decimal.NewFromInt(int64(n)).Mul(hundred).Div(total).Round(2)
	}
}

// Percent returns the share of class c, in percent.
func (d *Distribution) Percent(c Class) float64 {
	if int(c) >= NumClasses {
		return 0
	}
	return d.Percents[c].InexactFloat64()
}

// Primary returns the class with the largest share, ignoring Background.
// ok is false when no other class has any share.
func (d *Distribution) Primary() (Class, bool) {
	best, found := Background, false
	for _, c := range Classes()[1:] {
		p := d.Percents[c]
		if !p.IsPositive() {
			continue
		}
		if !found || p.GreaterThan(d.Percents[best]) {
			best, found = c, true
		}
	}
	return best, found
}

// Text renders the LAND_COVER_DATA block: one "Class: 12.34%" line per class.
func (d *Distribution) Text() string {
	var b strings.Builder
	for _, c := range Classes() {
		fmt.Fprintf(&b, "%s: %s%%\n", c, d.Percents[c].StringFixed(2))
	}
	return b.String()
}

// LandUse converts the non-background shares to a profile distribution keyed by clean label.
func (d *Distribution) LandUse() models.LandUseDistribution {
	out := models.LandUseDistribution{}
	for _, c := range Classes()[1:] {
		if d.Percents[c].IsPositive() {
			out[c.Label()] = d.Percents[c].StringFixed(2) + "%"
		}
	}
	return out
}

// WaterAccess infers water access from the Water share.
func (d *Distribution) WaterAccess() string {
	if d.Percents[Water].LessThan(decimal.NewFromFloat(RainFedThreshold)) {
		return "Presumed Rain-fed"
	}
	return "Surface water available (" + d.Percents[Water].StringFixed(2) + "% water)"
}

// ParseText reads a LAND_COVER_DATA block back. Lines that do not name a known
// class are ignored.
func ParseText(text string) (*Distribution, error) {
	d := &Distribution{}
	found := false
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		name, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		c, ok := ClassByName(strings.TrimLeft(name, "-* \t"))
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if i := strings.IndexAny(value, "% "); i >= 0 {
			value = value[:i]
		}
		p, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("class %s: invalid percentage %q", c, value)
		}
		d.Percents[c] = p.Round(2)
		found = true
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoClasses
	}
	return d, nil
}
