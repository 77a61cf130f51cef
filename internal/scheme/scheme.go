// Package scheme implements the visual scheme generator:
// producing 3-5 candidate VisualSchemes per node from structural
// and emotion features, with material-relationship colour logic and a
// PRNG-seeded top-up pass. The PRNG is threaded explicitly rather than
// touching the global generator.
package scheme

import (
	"fmt"
	"math/rand"

	"github.com/schollz/scorelens/internal/model"
)

var warmPalette = []string{"#e63946", "#f4a261", "#e9c46a", "#d62828", "#ee6c4d"}
var coolPalette = []string{"#264653", "#2a9d8f", "#457b9d", "#1d3557", "#3a86ff"}
var mixedPalette = []string{"#e63946", "#2a9d8f", "#f4a261", "#457b9d", "#e9c46a"}

var shapePools = map[model.StructureType][]model.ShapeType{
	model.TypeMotive:    {model.ShapeCircle, model.ShapeDiamond, model.ShapeStar4},
	model.TypeSubPhrase: {model.ShapeSquare, model.ShapeTriangle, model.ShapeHexagon},
	model.TypePhrase:    {model.ShapeCircle, model.ShapeSquare, model.ShapeStar5},
	model.TypePeriod:    {model.ShapeHexagon, model.ShapeOctagon, model.ShapeStar6},
	model.TypeTheme:     {model.ShapeStar5, model.ShapeSun, model.ShapeBurst},
	model.TypeSection:   {model.ShapeOctagon, model.ShapeSpiral, model.ShapeWave},
}

var dynamicsShapePools = map[string][]model.ShapeType{
	"soft":     {model.ShapeCircle, model.ShapeDiamond},
	"moderate": {model.ShapeSquare, model.ShapeHexagon, model.ShapeStar5},
	"strong":   {model.ShapeStar6, model.ShapeSun, model.ShapeBurst},
}

var dynamicsSizes = map[string]model.ShapeSize{
	"soft":     model.SizeSmall,
	"moderate": model.SizeMedium,
	"strong":   model.SizeLarge,
}

var typeDefaultAnimation = map[model.StructureType]model.AnimationType{
	model.TypeMotive:    model.AnimationFlicker,
	model.TypeSubPhrase: model.AnimationPulse,
	model.TypePhrase:    model.AnimationGlow,
	model.TypePeriod:    model.AnimationDrift,
	model.TypeTheme:     model.AnimationShimmer,
	model.TypeSection:   model.AnimationStill,
}

// Input bundles the per-node features the generator needs:
// structural fields straight off the node, the emotion triple from C12,
// and related nodes for the material-relationship colour pass.
type Input struct {
	Node         model.StructureNode
	Emotion      model.EmotionFeatures
	RelatedNodes []model.StructureNode
}

func shapeCountFor(durationMeasures int) int {
	switch {
	case durationMeasures <= 2:
		return 1
	case durationMeasures <= 4:
		return 2
	case durationMeasures <= 8:
		return 3
	default:
		return 4
	}
}

func arrangementFor(durationMeasures int) model.Arrangement {
	switch {
	case durationMeasures <= 2:
		return model.ArrangementSingle
	case durationMeasures <= 8:
		return model.ArrangementSequence
	default:
		return model.ArrangementGrid
	}
}

func pickShapes(in Input, variant, count int) []model.Shape {
	pool := dynamicsShapePools[in.Emotion.Dynamics]
	if len(pool) == 0 {
		pool = shapePools[in.Node.Type]
	}
	if len(pool) == 0 {
		pool = []model.ShapeType{model.ShapeCircle}
	}
	size := dynamicsSizes[in.Emotion.Dynamics]
	if size == "" {
		size = model.SizeMedium
	}
	shapes := make([]model.Shape, count)
	for i := 0; i < count; i++ {
		shapes[i] = model.Shape{Type: pool[(variant+i)%len(pool)], Size: size}
	}
	return shapes
}

func palette(node model.StructureNode) []string {
	cadencePAC := node.Features.Cadence != nil && node.Features.Cadence.Type == model.CadencePAC
	closed := node.Features.Closure != nil && *node.Features.Closure == model.ClosureClosed
	if closed || cadencePAC {
		return warmPalette
	}
	return coolPalette
}

func paletteByTempo(tempo string, fallback []string) []string {
	switch tempo {
	case "fast":
		return warmPalette
	case "slow":
		return coolPalette
	case "moderate":
		return mixedPalette
	default:
		return fallback
	}
}

func pickColors(in Input, shapeCount int) []string {
	base := paletteByTempo(in.Emotion.Tempo, palette(in.Node))
	n := shapeCount
	if n > 3 {
		n = 3
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = base[i%len(base)]
	}
	return out
}

func pickAnimation(in Input, variant int) model.AnimationType {
	options := []model.AnimationType{}
	switch in.Emotion.Tempo {
	case "fast":
		options = append(options, model.AnimationFlicker, model.AnimationPulse)
	case "slow":
		options = append(options, model.AnimationDrift, model.AnimationStill)
	}
	switch in.Emotion.Tension {
	case "tense":
		options = append(options, model.AnimationFlicker)
	case "relaxed":
		options = append(options, model.AnimationGlow)
	}
	options = append(options, typeDefaultAnimation[in.Node.Type])
	return options[variant%len(options)]
}

// materialRelationship applies the material-colour logic: a
// related node sharing node.Material's letter marks this scheme
// "similar" and forces the warm palette; a related node with a
// different letter marks it "contrasting" and forces cool; a prime-mark
// suffix marks "recapitulated" and remaps colour 0.
func materialRelationship(in Input, colors []string) ([]string, model.SchemeRelationship) {
	letter := byte(0)
	if in.Node.Material != "" {
		letter = in.Node.Material[0]
	}
	hasRelated := len(in.RelatedNodes) > 0
	shareLetter := false
	for _, r := range in.RelatedNodes {
		if r.Material != "" && r.Material[0] == letter {
			shareLetter = true
			break
		}
	}

	out := append([]string{}, colors...)
	var rel model.SchemeRelationship
	switch {
	case shareLetter:
		rel = model.RelSimilar
		out = cyclePalette(warmPalette, len(out))
	case hasRelated:
		rel = model.RelContrasting
		out = cyclePalette(coolPalette, len(out))
	}

	if len(in.Node.Material) > 0 && in.Node.Material[len(in.Node.Material)-1] == '\'' && letter != 0 {
		rel = model.RelRecapitulated
		if len(out) > 0 {
			out[0] = warmPalette[int(letter)%len(warmPalette)]
		}
	}
	return out, rel
}

func cyclePalette(pal []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = pal[i%len(pal)]
	}
	return out
}

func canonicalKey(s model.VisualScheme) string {
	key := ""
	for _, sh := range s.Shapes {
		key += string(sh.Type) + "|"
	}
	for _, c := range s.Colors {
		key += c + ","
	}
	key += string(s.Animation)
	return key
}

// Generate produces between 3 and 5 candidate schemes for a node,
// deduplicating variants and topping up with PRNG-seeded draws
// when the requested count exceeds how many distinct variants the
// deterministic pass produced. rng is caller-owned; tests seed it for
// determinism.
func Generate(in Input, count int, rng *rand.Rand) []model.VisualScheme {
	if count < 3 {
		count = 3
	}
	if count > 5 {
		count = 5
	}
	durationMeasures := in.Node.EndMeasure - in.Node.StartMeasure + 1
	shapeCount := shapeCountFor(durationMeasures)
	arrangement := arrangementFor(durationMeasures)

	seen := map[string]bool{}
	var schemes []model.VisualScheme
	for variant := 0; variant < count && len(schemes) < count; variant++ {
		shapes := pickShapes(in, variant, shapeCount)
		colors := pickColors(in, shapeCount)
		colors, rel := materialRelationship(in, colors)
		animation := pickAnimation(in, variant)
		s := model.VisualScheme{
			ID:                   fmt.Sprintf("%s_scheme_%d", in.Node.ID, variant),
			Shapes:               shapes,
			Colors:               colors,
			Animation:            animation,
			Arrangement:          arrangement,
			Relationship:         rel,
			EmotionFeatures:      &in.Emotion,
			RecommendationSource: model.SourceRuleBased,
		}
		key := canonicalKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		schemes = append(schemes, s)
	}

	for attempts := 0; len(schemes) < max(3, count) && attempts < 50; attempts++ {
		variant := rng.Intn(len(shapePools[in.Node.Type]) + 3)
		shapes := pickShapes(in, variant, shapeCount)
		colors := pickColors(in, shapeCount)
		colors, rel := materialRelationship(in, colors)
		s := model.VisualScheme{
			ID:                   fmt.Sprintf("%s_scheme_topup_%d", in.Node.ID, len(schemes)),
			Shapes:               shapes,
			Colors:               colors,
			Animation:            pickAnimation(in, variant),
			Arrangement:          arrangement,
			Relationship:         rel,
			EmotionFeatures:      &in.Emotion,
			RecommendationSource: model.SourceRuleBased,
		}
		key := canonicalKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		schemes = append(schemes, s)
	}

	return schemes
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
