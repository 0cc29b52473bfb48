package symbols

import "golang.org/x/text/unicode/norm"

// Normalize brings an identifier to NFC so that composed and decomposed
// spellings name the same symbol.
func Normalize(name string) string {
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}

// IsGenericName reports names reserved for generic parameters: a single
// uppercase ASCII letter.
func IsGenericName(name string) bool {
	return len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z'
}
