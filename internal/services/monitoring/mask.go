package monitoring

import "strings"

const (
	maskSymbol = "*"
	maskKeep   = 4
)

// Mask hides all but the last four characters, keeping the original length.
// Values of four characters or fewer come back unchanged.
func Mask(identity string) string {
	runes := []rune(identity)
	if len(runes) <= maskKeep {
		return identity
	}
	return strings.Repeat(maskSymbol, len(runes)-maskKeep) + string(runes[len(runes)-maskKeep:])
}
