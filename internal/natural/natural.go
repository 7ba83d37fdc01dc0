// Package natural orders labels the way a person reads them, so "node2"
// lands before "node12" without parsing the numeric suffix.
package natural

// Compare returns -1, 0 or 1 ordering a before, equal to, or after b.
//
// Both labels are scanned up to the shorter length for the first position
// holding a digit in either. When both hold a digit there and the preceding
// prefixes match case-insensitively, the shorter label sorts first. Every
// other case, including equal lengths, falls back to a case-insensitive
// byte comparison.
func Compare(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		da, db := isDigit(a[i]), isDigit(b[i])
		if !da && !db {
			continue
		}
		if da && db && foldCompare(a[:i], b[:i]) == 0 && len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
		break
	}
	return foldCompare(a, b)
}

// CompareOptional is Compare for labels that may be absent. An absent label
// sorts before any present one and two absent labels are equal.
func CompareOptional(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return Compare(*a, *b)
}

func foldCompare(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := lower(a[i]), lower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
