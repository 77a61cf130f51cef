// Package period implements the period detector:
// grouping phrases into periods, classifying their type, proportion, and
// closure, and merging compound periods.
package period

import (
	"math"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/phrase"
)

func cadenceStrength(p model.Phrase) float64 {
	if p.Cadence == nil {
		return 0
	}
	return model.CadenceStrengthScore(p.Cadence.Type)
}

func isStrongCadence(p model.Phrase) bool { return cadenceStrength(p) > 0.7 }

// DetectPeriods greedily groups phrases into periods, then
// merges adjacent compound-period candidates.
func DetectPeriods(phrases []model.Phrase) []model.Period {
	groups := group(phrases)
	periods := make([]model.Period, 0, len(groups))
	for _, g := range groups {
		periods = append(periods, build(g))
	}
	periods = mergeCompound(periods)
	for i := range periods {
		periods[i].Index = i
	}
	return periods
}

// group splits phrases into period-sized runs using three stop
// conditions: a strong cadence with >=2 phrases accumulated,
// 4 phrases accumulated, or the next phrase starting a new section.
func group(phrases []model.Phrase) [][]model.Phrase {
	groups := make([][]model.Phrase, 0)
	cur := make([]model.Phrase, 0)

	for i, p := range phrases {
		cur = append(cur, p)

		strongHere := isStrongCadence(p)
		endByStrongCadence := strongHere && len(cur) >= 2
		endByCount := len(cur) == 4
		endByNewSection := false
		if strongHere && i+1 < len(phrases) {
			if phrases[i+1].HeadSimilarity < 0.3 {
				endByNewSection = true
			}
		}

		if endByStrongCadence || endByCount || endByNewSection {
			groups = append(groups, cur)
			cur = make([]model.Phrase, 0)
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func build(phrases []model.Phrase) model.Period {
	per := model.Period{
		Phrases:      phrases,
		PhraseCount:  len(phrases),
		StartMeasure: phrases[0].StartMeasure,
		EndMeasure:   phrases[len(phrases)-1].EndMeasure,
		Material:     phrases[0].Material,
		Cadence:      phrases[len(phrases)-1].Cadence,
	}
	per.Type = classifyType(phrases)
	per.Proportion = classifyProportion(phrases)
	if isStrongCadence(phrases[len(phrases)-1]) {
		per.Closure = model.ClosureClosed
	} else {
		per.Closure = model.ClosureOpen
	}
	return per
}

// classifyType applies the phrase-count cascade.
func classifyType(phrases []model.Phrase) model.PeriodType {
	switch len(phrases) {
	case 1:
		return model.PeriodParallel
	case 2:
		p2 := phrases[1]
		if p2.Relationship == model.PhraseRelationParallel || p2.HeadSimilarity > 0.7 {
			return model.PeriodParallel
		}
		if phrase.IsSequentialRelation(phrases[0], phrases[1]) {
			return model.PeriodSequential
		}
		return model.PeriodContrasting
	case 3:
		return model.PeriodThreePhrase
	case 4:
		return model.PeriodFourPhrase
	default:
		return model.PeriodCompound
	}
}

func classifyProportion(phrases []model.Phrase) model.Proportion {
	length := phrases[0].Length()
	equal := true
	for _, p := range phrases {
		if p.Length() != length {
			equal = false
			break
		}
	}
	if !equal {
		return model.ProportionNonSquare
	}
	if length >= 4 && isPowerOfTwo(length) {
		return model.ProportionSquare
	}
	return model.ProportionRegular
}

func isPowerOfTwo(n int) bool {
	if n < 1 {
		return false
	}
	log2 := math.Log2(float64(n))
	return math.Abs(log2-math.Round(log2)) < 1e-9
}

// mergeCompound merges consecutive period pairs whose first phrases share
// a head and whose second period closes more strongly than the first,
// into a single compound AA' period.
func mergeCompound(periods []model.Period) []model.Period {
	merged := make([]model.Period, 0, len(periods))
	i := 0
	for i < len(periods) {
		if i+1 < len(periods) && isCompoundPair(periods[i], periods[i+1]) {
			merged = append(merged, mergeTwo(periods[i], periods[i+1]))
			i += 2
			continue
		}
		merged = append(merged, periods[i])
		i++
	}
	return merged
}

func isCompoundPair(a, b model.Period) bool {
	headSim := phrase.CompareHeads(a.Phrases[0], b.Phrases[0])
	return headSim > 0.7 && lastCadenceStrength(b) > lastCadenceStrength(a)
}

func lastCadenceStrength(p model.Period) float64 {
	if p.Cadence == nil {
		return 0
	}
	return model.CadenceStrengthScore(p.Cadence.Type)
}

func mergeTwo(a, b model.Period) model.Period {
	all := append(append([]model.Phrase{}, a.Phrases...), b.Phrases...)
	m := build(all)
	m.Type = model.PeriodCompound
	m.Material = a.Material
	return m
}
