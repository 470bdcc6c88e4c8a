package constraint

import (
	"encoding/json"
	"math/bits"

	"github.com/bent101/wordle-search/hint"
)

// LetterInfo represents what we know about a letter's constraints in the target word
type LetterInfo struct {
	Letter            string `json:"letter"`
	MustBeInPositions []int  `json:"must_be_in_positions,omitempty"`
	CantBeInPositions []int  `json:"cant_be_in_positions,omitempty"`
	Frequency         int    `json:"frequency"`
	FrequencyIsExact  bool   `json:"frequency_is_exact"`
}

// Describe lists every letter the state says something about.
func (s State) Describe() []LetterInfo {
	var infos []LetterInfo

	for c := range hint.AlphabetSize {
		bit := uint32(1) << c
		info := LetterInfo{
			Letter:           string(rune('a' + c)),
			Frequency:        int(s.lower[c]),
			FrequencyIsExact: s.exact[c] > 0,
		}
		if info.FrequencyIsExact {
			info.Frequency = int(s.exact[c])
		}

		allowed := false
		for i, v := range s.valid {
			switch {
			case v == bit:
				info.MustBeInPositions = append(info.MustBeInPositions, i)
			case v&bit == 0 && bits.OnesCount32(v) > 1:
				// Positions pinned to another letter are implied, not listed.
				info.CantBeInPositions = append(info.CantBeInPositions, i)
			}
			allowed = allowed || v&bit != 0
		}

		if !allowed {
			info.Frequency, info.FrequencyIsExact = 0, true
		}

		if info.Frequency > 0 || info.FrequencyIsExact || len(info.MustBeInPositions) > 0 || len(info.CantBeInPositions) > 0 {
			infos = append(infos, info)
		}
	}

	return infos
}

// Dump renders Describe as JSON for diagnostics.
func (s State) Dump() string {
	data, err := json.Marshal(s.Describe())
	if err != nil {
		return err.Error()
	}
	return string(data)
}
