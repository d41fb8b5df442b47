// Package landcover turns segmentation output into land-use shares.
package landcover

import (
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Class is one of the nine OpenEarthMap land-cover classes
type Class uint8

const (
	Background Class = iota
	Bareland
	Rangeland
	DevelopedSpace
	Road
	Tree
	Water
	Agriculture
	Building

	NumClasses = 9
)

var classNames = [NumClasses]string{
	"Background",
	"Bareland",
	"Rangeland",
	"Developed_Space",
	"Road",
	"Tree",
	"Water",
	"Agriculture land",
	"Building",
}

// palette used by the segmentation model to colour its masks
var palette = [NumClasses]color.RGBA{
	{0, 0, 0, 255},
	{128, 0, 0, 255},
	{0, 255, 36, 255},
	{148, 148, 148, 255},
	{255, 255, 255, 255},
	{34, 97, 38, 255},
	{0, 69, 255, 255},
	{75, 181, 73, 255},
	{222, 31, 7, 255},
}

var paletteLab [NumClasses]colorful.Color

func init() {
	for i, c := range palette {
		paletteLab[i] = toColorful(c)
	}
}

// String returns the class name as the model reports it.
func (c Class) String() string {
	if int(c) >= NumClasses {
		return "Unknown"
	}
	return classNames[c]
}

// Label is the human label used in profiles: "Agriculture land" becomes
// "Agriculture" and underscores become spaces.
func (c Class) Label() string {
	name := c.String()
	name = strings.TrimSuffix(name, " land")
	return strings.ReplaceAll(name, "_", " ")
}

// Color returns the palette colour of the class.
func (c Class) Color() color.RGBA {
	if int(c) >= NumClasses {
		return color.RGBA{}
	}
	return palette[c]
}

// Classes lists every class in index order.
func Classes() []Class {
	out := make([]Class, NumClasses)
	for i := range out {
		out[i] = Class(i)
	}
	return out
}

// ClassByName matches a model name or a clean label, ignoring case.
func ClassByName(name string) (Class, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Classes() {
		if strings.EqualFold(name, c.String()) || strings.EqualFold(name, c.Label()) {
			return c, true
		}
	}
	return 0, false
}

// NearestClass maps a mask pixel to the class whose palette colour is closest in Lab space.
func NearestClass(c color.Color) Class {
	target := toColorful(c)
	best, bestDist := Background, -1.0
	for i, ref := range paletteLab {
		d := target.DistanceLab(ref)
		if bestDist < 0 || d < bestDist {
			best, bestDist = Class(i), d
		}
	}
	return best
}

func toColorful(c color.Color) colorful.Color {
	r, g, b, _ := c.RGBA()
	return colorful.Color{R: float64(r) / 0xffff, G: float64(g) / 0xffff, B: float64(b) / 0xffff}
}
