package domain

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Material is one of the four canonical waste categories the classifier can
// report. Values are stored unaccented and lowercase; ResolveMaterial folds
// any accepted spelling into these constants.
type Material string

const (
	MaterialMetal    Material = "metal"
	MaterialVidro    Material = "vidro"
	MaterialPapel    Material = "papel"
	MaterialPlastico Material = "plastico"
)

// Materials returns the canonical kinds in dashboard display order.
func Materials() []Material {
	return []Material{MaterialMetal, MaterialVidro, MaterialPapel, MaterialPlastico}
}

// Valid reports whether m is one of the four canonical kinds.
func (m Material) Valid() bool {
	switch m {
	case MaterialMetal, MaterialVidro, MaterialPapel, MaterialPlastico:
		return true
	}
	return false
}

// codeEmpty is the classifier code for "nothing in front of the camera".
const codeEmpty = 5

// deaccent strips combining marks so "plástico" and "plastico" compare equal.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ResolveMaterial maps raw classifier output — a numeric code 1–5 or a
// free-text category name — to a canonical Material.
//
// Returns ErrNoMaterial for the empty marker (code 5 / "vazio") and
// ErrInvalidMaterial for anything outside the recognized set. It never
// silently defaults. Matching is case-, space- and accent-insensitive.
func ResolveMaterial(raw string) (Material, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrInvalidMaterial
	}
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}

	if code, err := strconv.Atoi(s); err == nil {
		return ResolveCode(code)
	}

	switch s {
	case "metal":
		return MaterialMetal, nil
	case "vidro":
		return MaterialVidro, nil
	case "papel":
		return MaterialPapel, nil
	case "plastico":
		return MaterialPlastico, nil
	case "vazio":
		return "", ErrNoMaterial
	}
	return "", ErrInvalidMaterial
}

// ResolveCode maps a numeric classifier code to a Material.
// The code table is fixed by the device firmware:
// 1=metal, 2=vidro, 3=papel, 4=plastico, 5=empty.
func ResolveCode(code int) (Material, error) {
	switch code {
	case 1:
		return MaterialMetal, nil
	case 2:
		return MaterialVidro, nil
	case 3:
		return MaterialPapel, nil
	case 4:
		return MaterialPlastico, nil
	case codeEmpty:
		return "", ErrNoMaterial
	}
	return "", ErrInvalidMaterial
}
