package transform

// Short band codes keyed by the labels the item-level query emits. Labels
// outside this map pass through BandCode unchanged and end up contributing
// to no pivot column.
var bandLabels = map[string]string{
	"0% VAT Band":              "0",
	"5% VAT Band":              "5",
	"20% VAT Band":             "20",
	"Other / Unknown VAT Band": "other",
}

// BandCodes fixes the band order used for pivot columns.
var BandCodes = [4]string{"0", "5", "20", "other"}

// BandCode maps a VAT band label to its short code. The match is exact;
// unrecognized labels are returned unchanged.
func BandCode(label string) string {
	if code, ok := bandLabels[label]; ok {
		return code
	}
	return label
}

// bandIndex returns the position of code in BandCodes, or -1 for codes
// outside the four known bands.
func bandIndex(code string) int {
	for i, c := range BandCodes {
		if c == code {
			return i
		}
	}
	return -1
}
