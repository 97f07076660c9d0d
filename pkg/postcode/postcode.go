// Package postcode formats and checks UK postcodes.
package postcode

import (
	"regexp"
	"strings"
)

// shape is outward code (area + district), one space, inward code.
var shape = regexp.MustCompile(`^([A-Z]{1,2})([0-9][A-Z0-9]?) ([0-9][A-Z]{2})$`)

// areas lists the postcode areas in use across the UK and Crown dependencies.
var areas = map[string]struct{}{}

func init() {
	for _, a := range strings.Fields(`
		AB AL B BA BB BD BH BL BN BR BS BT CA CB CF CH CM CO CR CT CV CW
		DA DD DE DG DH DL DN DT DY E EC EH EN EX FK FY G GL GU GY HA HD HG
		HP HR HS HU HX IG IM IP IV JE KA KT KW KY L LA LD LE LL LN LS LU M
		ME MK ML N NE NG NN NP NR NW OL OX PA PE PH PL PO PR RG RH RM S SA
		SE SG SK SL SM SN SO SP SR SS ST SW SY TA TD TF TN TQ TR TS TW UB W
		WA WC WD WF WN WR WS WV YO ZE`) {
		areas[a] = struct{}{}
	}
}

// FormatForPrinting upper-cases a postcode and normalises its spacing to a
// single space before the three character inward code. Input too short to
// hold an inward code is returned upper-cased with whitespace removed.
func FormatForPrinting(raw string) string {
	compact := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if len(compact) < 5 {
		return compact
	}
	return compact[:len(compact)-3] + " " + compact[len(compact)-3:]
}

// IsRealUK reports whether a printed postcode has a valid shape and a known
// postcode area.
func IsRealUK(printed string) bool {
	if printed == "GIR 0AA" {
		return true
	}
	m := shape.FindStringSubmatch(printed)
	if m == nil {
		return false
	}
	_, ok := areas[m[1]]
	return ok
}
