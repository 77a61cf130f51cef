// Package form implements the form classifier: reducing
// a period sequence to a single form label via a prioritised cascade
// (variation, rondo, sonata, compound ternary, popular-form), with
// material-pattern bookkeeping and auxiliary-structure detection.
package form

import (
	"regexp"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/phrase"
)

var popularVerseChorus = regexp.MustCompile(`^(ab)+a?$|^(ba)+b?$`)

// BuildMaterialPattern summarizes the first letter of each period's
// material label.
func BuildMaterialPattern(periods []model.Period) model.MaterialPattern {
	mp := model.MaterialPattern{Counts: map[byte]int{}}
	if len(periods) == 0 {
		return mp
	}
	letters := make([]byte, len(periods))
	for i, p := range periods {
		l := byte('a')
		if p.Material != "" {
			l = p.Material[0]
		}
		letters[i] = l
		mp.Counts[l]++
	}
	mp.Pattern = string(letters)

	best := letters[0]
	bestCount := mp.Counts[best]
	for _, l := range letters {
		if mp.Counts[l] > bestCount {
			best = l
			bestCount = mp.Counts[l]
		}
	}
	mp.MainMaterial = best
	mp.HasRecapitulation = len(periods) >= 3 && letters[0] == letters[len(letters)-1]
	return mp
}

type candidate struct {
	form       model.FormType
	confidence float64
}

// periodSimilarity proxies period-level similarity by the melodic
// similarity of each period's opening phrase heads (reusing the phrase
// package's head-comparison helper).
func periodSimilarity(a, b model.Period) float64 {
	if len(a.Phrases) == 0 || len(b.Phrases) == 0 {
		return 0
	}
	return phrase.CompareHeads(a.Phrases[0], b.Phrases[0])
}

// Classify runs the form decision cascade over a period sequence and
// returns the winning form with its sections, confidence, and a short
// human-readable description.
func Classify(periods []model.Period) model.FormAnalysis {
	n := len(periods)
	mp := BuildMaterialPattern(periods)

	winner := baseClassification(periods, mp)

	if c, ok := tryVariation(periods); ok && c.confidence > winner.confidence {
		winner = c
	}
	if n >= 5 {
		if c, ok := tryRondo(mp); ok && c.confidence > winner.confidence {
			winner = c
		}
	}
	if n >= 3 {
		if c, ok := trySonata(periods); ok && c.confidence > winner.confidence {
			winner = c
		}
	}
	if n >= 4 && mp.HasRecapitulation {
		c := candidate{model.FormTernaryCompound, 0.78}
		if c.confidence > winner.confidence {
			winner = c
		}
	}
	if c, ok := tryPopularForm(mp); ok && c.confidence > winner.confidence {
		winner = c
	}

	sections := buildSections(periods, winner.form, mp)
	for i := range sections {
		sections[i].Confidence = winner.confidence
	}
	return model.FormAnalysis{
		FormType:    winner.form,
		Sections:    sections,
		Confidence:  winner.confidence,
		Description: describe(winner.form, n),
	}
}

// baseClassification handles the direct N=0..3 rules
// and falls back to a low-confidence one_part guess for N>=4, to be
// overridden by the more specific probes that follow.
func baseClassification(periods []model.Period, mp model.MaterialPattern) candidate {
	switch len(periods) {
	case 0:
		return candidate{model.FormOnePart, 0.5}
	case 1:
		return candidate{model.FormOnePart, 0.9}
	case 2:
		if isRoundedBinary(periods) {
			return candidate{model.FormBinaryRounded, 0.8}
		}
		return candidate{model.FormBinaryParallel, 0.8}
	case 3:
		if mp.HasRecapitulation {
			return candidate{model.FormTernarySimple, 0.8}
		}
		return candidate{model.FormTernaryParallel, 0.8}
	default:
		return candidate{model.FormOnePart, 0.5}
	}
}

func isRoundedBinary(periods []model.Period) bool {
	if len(periods) != 2 || len(periods[0].Phrases) == 0 || len(periods[1].Phrases) == 0 {
		return false
	}
	last := periods[1].Phrases[len(periods[1].Phrases)-1]
	first := periods[0].Phrases[0]
	return phrase.CompareHeads(first, last) > 0.6
}

// tryVariation checks whether most later periods vary the opening
// period's material within the variation similarity band.
func tryVariation(periods []model.Period) (candidate, bool) {
	if len(periods) < 2 {
		return candidate{}, false
	}
	matches := 0
	for i := 1; i < len(periods); i++ {
		sim := periodSimilarity(periods[i], periods[0])
		if sim > 0.3 && sim < 0.9 {
			matches++
		}
	}
	ratio := float64(matches) / float64(len(periods)-1)
	if ratio < 0.6 {
		return candidate{}, false
	}
	return candidate{model.FormVariation, 0.7 + 0.2*ratio}, true
}

// tryRondo checks the refrain condition: the main material must recur at
// least 3 times with at least 2 distinct episode materials between
// recurrences.
func tryRondo(mp model.MaterialPattern) (candidate, bool) {
	mainCount := mp.Counts[mp.MainMaterial]
	if mainCount < 3 {
		return candidate{}, false
	}
	episodeCount := 0
	for letter := range mp.Counts {
		if letter != mp.MainMaterial {
			episodeCount++
		}
	}
	if episodeCount < 2 {
		return candidate{}, false
	}
	conf := 0.5 + 0.1*float64(mainCount) + 0.1*float64(episodeCount)
	if conf > 0.9 {
		conf = 0.9
	}
	return candidate{model.FormRondo, conf}, true
}

// trySonata checks the recapitulation condition: the final third of the period
// sequence must contain a period whose opening material recalls the very
// first period (a "recapitulation" of the exposition's main theme).
func trySonata(periods []model.Period) (candidate, bool) {
	n := len(periods)
	thirdStart := n - n/3
	if thirdStart >= n {
		thirdStart = n - 1
	}
	found := false
	for i := thirdStart; i < n; i++ {
		if periodSimilarity(periods[i], periods[0]) > 0.5 {
			found = true
			break
		}
	}
	if !found {
		return candidate{}, false
	}
	return candidate{model.FormSonata, 0.7}, true
}

// tryPopularForm probes the two-material popular song patterns.
func tryPopularForm(mp model.MaterialPattern) (candidate, bool) {
	if mp.Pattern == "aaba" {
		return candidate{model.FormAABA, 0.8}, true
	}
	if len(mp.Counts) == 2 && popularVerseChorus.MatchString(mp.Pattern) {
		return candidate{model.FormVerseChorus, 0.75}, true
	}
	return candidate{}, false
}

// classifyMiddleSection orders its tests trio > development > episode.
// phraseCount and closure describe the whole middle section, which may
// span several periods.
func classifyMiddleSection(phraseCount int, closure model.Closure, simToA float64) model.MiddleSectionType {
	switch {
	case closure == model.ClosureClosed && phraseCount >= 2:
		return model.MiddleTrio
	case simToA > 0.5 && phraseCount < 2:
		return model.MiddleDevelopment
	default:
		return model.MiddleEpisode
	}
}

func buildSections(periods []model.Period, ft model.FormType, mp model.MaterialPattern) []model.Section {
	if len(periods) == 0 {
		return nil
	}
	switch ft {
	case model.FormTernarySimple, model.FormTernaryParallel, model.FormTernaryCompound:
		if len(periods) >= 3 {
			return ternarySections(periods)
		}
	case model.FormRondo:
		return rondoSections(periods, mp)
	case model.FormSonata:
		return sonataSections(periods)
	}
	return wholePieceSections(periods, ft)
}

func sectionSpan(periods []model.Period) (int, int) {
	return periods[0].StartMeasure, periods[len(periods)-1].EndMeasure
}

func wholePieceSections(periods []model.Period, ft model.FormType) []model.Section {
	start, end := sectionSpan(periods)
	return []model.Section{{
		ID: "A", Name: "A", Type: ft.String(), Function: model.FunctionTheme,
		StartMeasure: start, EndMeasure: end, Periods: periods,
	}}
}

func ternarySections(periods []model.Period) []model.Section {
	a := periods[:1]
	b := periods[1 : len(periods)-1]
	aPrime := periods[len(periods)-1:]
	var mid model.MiddleSectionType
	if len(b) > 0 {
		simToA := periodSimilarity(b[0], a[0])
		phraseCount := 0
		for _, per := range b {
			phraseCount += per.PhraseCount
		}
		closure := b[len(b)-1].Closure
		mid = classifyMiddleSection(phraseCount, closure, simToA)
	}
	as, ae := sectionSpan(a)
	bs, be := sectionSpan(b)
	a2s, a2e := sectionSpan(aPrime)
	return []model.Section{
		{ID: "A", Name: "A", Type: "theme", Function: model.FunctionA, StartMeasure: as, EndMeasure: ae, Periods: a},
		{ID: "B", Name: "B", Type: "theme", Function: model.FunctionB, StartMeasure: bs, EndMeasure: be, Periods: b, MiddleType: mid},
		{ID: "A'", Name: "A'", Type: "theme", Function: model.FunctionRecapitulation, StartMeasure: a2s, EndMeasure: a2e, Periods: aPrime, IsRecurrence: true},
	}
}

func rondoSections(periods []model.Period, mp model.MaterialPattern) []model.Section {
	sections := make([]model.Section, 0, len(periods))
	for i, p := range periods {
		letter := byte('a')
		if p.Material != "" {
			letter = p.Material[0]
		}
		fn := model.FunctionEpisode
		if letter == mp.MainMaterial {
			fn = model.FunctionRefrain
		}
		sections = append(sections, model.Section{
			ID: string(rune('A' + i)), Name: string(p.Material),
			Type: "rondo_section", Function: fn,
			StartMeasure: p.StartMeasure, EndMeasure: p.EndMeasure,
			Periods: []model.Period{p}, IsRecurrence: fn == model.FunctionRefrain && i > 0,
		})
	}
	return sections
}

func sonataSections(periods []model.Period) []model.Section {
	n := len(periods)
	expEnd := n / 3
	if expEnd < 1 {
		expEnd = 1
	}
	devEnd := n - n/3
	if devEnd <= expEnd {
		devEnd = expEnd + 1
	}
	if devEnd > n {
		devEnd = n
	}
	exposition := periods[:expEnd]
	development := periods[expEnd:devEnd]
	recap := periods[devEnd:]
	sections := make([]model.Section, 0, 3)
	es, ee := sectionSpan(exposition)
	sections = append(sections, model.Section{ID: "exposition", Name: "Exposition", Type: "sonata_section", Function: model.FunctionExposition, StartMeasure: es, EndMeasure: ee, Periods: exposition})
	if len(development) > 0 {
		ds, de := sectionSpan(development)
		sections = append(sections, model.Section{ID: "development", Name: "Development", Type: "sonata_section", Function: model.FunctionDevelopment, StartMeasure: ds, EndMeasure: de, Periods: development})
	}
	if len(recap) > 0 {
		rs, re := sectionSpan(recap)
		recapType := "exact"
		if periodSimilarity(recap[0], exposition[0]) < 0.8 {
			recapType = "varied"
		}
		sections = append(sections, model.Section{ID: "recapitulation", Name: "Recapitulation", Type: "sonata_section", Function: model.FunctionRecapitulation, StartMeasure: rs, EndMeasure: re, Periods: recap, RecapType: recapType})
	}
	return sections
}

func describe(ft model.FormType, n int) string {
	switch ft {
	case model.FormOnePart:
		return "single undifferentiated section"
	case model.FormBinaryParallel:
		return "two contrasting periods (AB)"
	case model.FormBinaryRounded:
		return "two periods with the opening material recalled at the close"
	case model.FormTernarySimple, model.FormTernaryParallel:
		return "three-part form (ABA or ABC)"
	case model.FormTernaryCompound:
		return "compound ternary with a recapitulated outer section"
	case model.FormRondo:
		return "recurring refrain alternating with episodes"
	case model.FormSonata:
		return "exposition, development, and recapitulation"
	case model.FormVariation:
		return "a theme restated with progressive variation"
	case model.FormAABA:
		return "thirty-two-bar AABA song form"
	case model.FormVerseChorus:
		return "alternating verse and chorus"
	default:
		return "undetermined form"
	}
}

// DetectAuxiliaries identifies the introduction, coda/codetta, inter-period
// transitions, and overlong phrase extensions outside the period hierarchy.
func DetectAuxiliaries(periods []model.Period, firstMeasure, lastMeasure int) model.Auxiliaries {
	var aux model.Auxiliaries
	if len(periods) == 0 {
		return aux
	}
	if gap := periods[0].StartMeasure - firstMeasure; gap >= 1 {
		aux.Introduction = &model.MeasureRange{StartMeasure: firstMeasure, EndMeasure: periods[0].StartMeasure - 1}
	}
	if gap := lastMeasure - periods[len(periods)-1].EndMeasure; gap >= 1 {
		rng := model.MeasureRange{StartMeasure: periods[len(periods)-1].EndMeasure + 1, EndMeasure: lastMeasure}
		if gap > 4 {
			aux.Coda = &rng
		} else {
			aux.Codetta = &rng
		}
	}
	for i := 1; i < len(periods); i++ {
		gap := periods[i].StartMeasure - periods[i-1].EndMeasure - 1
		if gap >= 1 {
			aux.Transitions = append(aux.Transitions, model.MeasureRange{
				StartMeasure: periods[i-1].EndMeasure + 1,
				EndMeasure:   periods[i].StartMeasure - 1,
			})
		}
	}
	for _, p := range periods {
		for _, ph := range p.Phrases {
			if ph.Length() > 6 {
				aux.Extensions = append(aux.Extensions, ph.Index)
			}
		}
	}
	return aux
}
