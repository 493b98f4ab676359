package pdf

// LineLimits maps field names to the maximum number of wrapped text lines a
// field may hold. The zero value has no limits; lookups on missing fields
// report unlimited.
type LineLimits struct {
	limits map[string]int
}

// NewLineLimits builds a limit table from the given mapping. Entries with a
// non-positive limit are dropped. The input map is copied, so the table is
// safe to share across concurrent fills.
func NewLineLimits(limits map[string]int) LineLimits {
	copied := make(map[string]int, len(limits))
	for name, max := range limits {
		if max > 0 {
			copied[name] = max
		}
	}
	return LineLimits{limits: copied}
}

// Lookup returns the line limit for a field. ok is false when the field has
// no limit, which callers treat as unlimited.
func (l LineLimits) Lookup(field string) (limit int, ok bool) {
	limit, ok = l.limits[field]
	return limit, ok
}

// Merge returns a new table where entries from overrides take precedence
// over the receiver's entries. Neither input is modified.
func (l LineLimits) Merge(overrides map[string]int) LineLimits {
	merged := make(map[string]int, len(l.limits)+len(overrides))
	for name, max := range l.limits {
		merged[name] = max
	}
	for name, max := range overrides {
		if max > 0 {
			merged[name] = max
		}
	}
	return LineLimits{limits: merged}
}

// Len returns the number of fields with a limit.
func (l LineLimits) Len() int {
	return len(l.limits)
}

// Table returns a copy of the underlying mapping, for reporting endpoints.
func (l LineLimits) Table() map[string]int {
	copied := make(map[string]int, len(l.limits))
	for name, max := range l.limits {
		copied[name] = max
	}
	return copied
}

// DefaultLineLimits returns the built-in limit table covering every known
// multiline field of the SSA-3373 template. Fields not listed here are
// unlimited: they still wrap to the field width but are never truncated.
func DefaultLineLimits() LineLimits {
	return NewLineLimits(map[string]int{
		// Main narrative fields
		"N5text[0]":        7, // Disability explanation
		"N6text[0]":        4, // Wake up to bed each day description
		"N7text[0]":        1, // Take care
		"N9IfYesField[0]":  1, // Pets
		"N10Field[0]":      1, // What could you do that you can't now
		"N11IfYesField[0]": 1, // Sleep

		// Personal care activities
		"N12Dress[0]":        1,
		"N12Bathe[0]":        1,
		"N12CareForHair[0]":  1,
		"N12Save[0]":         1,
		"N12FeedSelf[0]":     1,
		"N12UseTheToilet[0]": 1,
		"N12Other[0]":        1,
		"N12BIfYesField[0]":  2, // Help received with personal care
		"N12CIfYesField[0]":  3, // Changes in personal care abilities

		// Meals and housework
		"N13AIfYesField[0]":    2,
		"N13AHowOftenField[0]": 1,
		"N13AHowLong[0]":       1,
		"N13AAnyChngsField[0]": 1,
		"N13BIfNoField[0]":     3,
		"N14AField[0]":         2,
		"N14BField[0]":         1,
		"N14CIfYesField[0]":    1,
		"N14dField[0]":         2,

		// Transportation and mobility
		"N15A[0]":               1,
		"N15AIfField[0]":        2,
		"N15CIfNoField[0]":      2,
		"N15DIfYouDontDrive[0]": 2,

		// Shopping and money management
		"N16B[0]":        1,
		"N16C[0]":        1,
		"N17AExplain[0]": 2,
		"N17BIfYes[0]":   4,

		// Hobbies
		"N18A[0]": 3,
		"N18B[0]": 2,
		"N18C[0]": 2,

		// Social activities and going out
		"N15BOtherField[0]": 1,
		"N19A[0]":           1,
		"N19B[0]":           1,
		"N19BHowOften[0]":   2,
		"N19CIfYes[0]":      2,
		"N19D[0]":           2,

		// Physical and cognitive limitations
		"N20A[0]":      3,
		"N20C[0]":      1,
		"N20CIfYou[0]": 2,
		"N20D[0]":      2,
		"N20F[0]":      2,
		"N20G[0]":      2,
		"N20H[0]":      2,

		// Work history details
		"N20IIfYesExplain[0]":  4,
		"N20IIfYesEmployer[0]": 1,
		"N20J[0]":              1,
		"N20K[0]":              2,
		"N20LIfYes[0]":         9,

		// Assistive devices and equipment
		"N21IfOther[0]":        1,
		"N21Which[0]":          2,
		"N21WhenPrescribed[0]": 2,
		"N21WhenDoYou[0]":      7,

		// Medication details
		"N22Med1[0]":     1,
		"N22Effects1[0]": 1,
		"N22Med2[0]":     1,
		"N22Effects2[0]": 1,
		"N22Med3[0]":     1,
		"N22Effects3[0]": 1,
		"N22Med4[0]":     1,
		"N22Effects4[0]": 1,
		"N22Med5[0]":     1,
		"N22Effects5[0]": 1,

		// Final remarks and additional information
		"Remarks[0]": 13,
	})
}
