package services

// Classification is the outcome of inspecting a trimmed autocomplete query.
// NumericLead means the first character is a decimal digit; ZipCandidate
// additionally requires an all-digit query of at most five characters.
type Classification struct {
	NumericLead  bool
	ZipCandidate bool
}

// Classify inspects the trimmed query string. It is total over any
// non-empty string and has no failure modes.
//
// Postal codes are 5-digit numeric strings; street addresses begin with a
// numeric street number but contain later non-digit characters or exceed
// five digits. That single rule separates the two without a dictionary.
func Classify(q string) Classification {
	if q == "" {
		return Classification{}
	}

	numericLead := isDigit(q[0])
	if !numericLead {
		return Classification{}
	}

	allDigits := true
	for i := 0; i < len(q); i++ {
		if !isDigit(q[i]) {
			allDigits = false
			break
		}
	}

	return Classification{
		NumericLead:  true,
		ZipCandidate: allDigits && len(q) <= 5,
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
