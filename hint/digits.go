package hint

// Digit is one position of encoded feedback.
//
// Absent means the letter is not in the answer. 1..WordLength-1 is an exact
// count for a letter the guess over-used. Present is a misplaced letter with
// no known cap, and Guaranteed is an exact positional match.
type Digit uint8

const (
	Absent     Digit = 0
	Present    Digit = WordLength
	Guaranteed Digit = WordLength + 1

	// Base is the radix of a Pattern.
	Base = WordLength + 2
)

// Capped reports whether d carries an exact letter count.
func (d Digit) Capped() bool {
	return d > Absent && d < Present
}

// Digits is the encoded feedback for a whole guess.
type Digits [WordLength]Digit

// Pattern is Digits packed into one base-Base integer, digit i weighted Base^i.
type Pattern uint16

var (
	placeValues [WordLength]Pattern

	// NumPatterns is the size of the dense Pattern range.
	NumPatterns int

	// SolvedPattern is the pattern of an exact guess.
	SolvedPattern Pattern
)

func init() {
	v := Pattern(1)
	for i := range WordLength {
		placeValues[i] = v
		SolvedPattern += Pattern(Guaranteed) * v
		v *= Base
	}
	NumPatterns = int(v)
}

// PlaceValue returns the weight of position i in a Pattern.
func PlaceValue(i int) Pattern {
	return placeValues[i]
}

func (ds Digits) Pattern() Pattern {
	var p Pattern
	for i, d := range ds {
		p += Pattern(d) * placeValues[i]
	}
	return p
}

func (p Pattern) Digits() Digits {
	var ds Digits
	for i := range WordLength {
		ds[i] = Digit(p % Base)
		p /= Base
	}
	return ds
}

func (p Pattern) Solved() bool {
	return p == SolvedPattern
}

func (ds Digits) Solved() bool {
	return ds.Pattern().Solved()
}
