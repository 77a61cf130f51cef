package model

// CadenceType is a harmonic-closure classification.
type CadenceType int

const (
	CadencePAC CadenceType = iota
	CadenceIAC
	CadenceHalf
	CadenceDeceptive
	CadencePlagal
	CadencePhrygian
)

func (c CadenceType) String() string {
	switch c {
	case CadencePAC:
		return "PAC"
	case CadenceIAC:
		return "IAC"
	case CadenceHalf:
		return "Half"
	case CadenceDeceptive:
		return "Deceptive"
	case CadencePlagal:
		return "Plagal"
	case CadencePhrygian:
		return "Phrygian"
	default:
		return "Unknown"
	}
}

// CadenceStrength is the qualitative strength a cadence is tagged with.
type CadenceStrength int

const (
	StrengthWeak CadenceStrength = iota
	StrengthModerate
	StrengthStrong
)

// Cadence is a harmonic arrival point.
type Cadence struct {
	Measure    int             `json:"measure"`
	Beat       float64         `json:"beat"`
	Type       CadenceType     `json:"type"`
	Strength   CadenceStrength `json:"strength"`
	Confidence float64         `json:"confidence"`
}

// CadenceStrengthScore maps a cadence type to the numeric strength used by
// phrase-closure and period-boundary decisions.
func CadenceStrengthScore(t CadenceType) float64 {
	switch t {
	case CadencePAC:
		return 1.0
	case CadenceIAC:
		return 0.8
	case CadencePlagal:
		return 0.7
	case CadenceDeceptive:
		return 0.5
	case CadenceHalf:
		return 0.4
	case CadencePhrygian:
		return 0.3
	default:
		return 0.3
	}
}

// Contour is the overall melodic direction of a motive.
type Contour int

const (
	ContourStatic Contour = iota
	ContourAscending
	ContourDescending
)

// DevelopmentTechnique is the relationship of a motive/sub-phrase/phrase to
// its predecessor.
type DevelopmentTechnique int

const (
	RelationNew DevelopmentTechnique = iota
	RelationRepetition
	RelationSequence
	RelationVariation
	RelationFragmentation
	RelationInversion
)

func (d DevelopmentTechnique) String() string {
	switch d {
	case RelationRepetition:
		return "repetition"
	case RelationSequence:
		return "sequence"
	case RelationVariation:
		return "variation"
	case RelationFragmentation:
		return "fragmentation"
	case RelationInversion:
		return "inversion"
	default:
		return "new"
	}
}

// Motive is the smallest recognisable unit, typically 1-2 beats.
type Motive struct {
	Index           int                  `json:"index"`
	Measure         int                  `json:"measure"`
	StartBeat       float64              `json:"startBeat"`
	Notes           []Note               `json:"notes"`
	IntervalPattern []int                `json:"intervalPattern"`
	RhythmPattern   []float64            `json:"rhythmPattern"`
	Contour         Contour              `json:"contour"`
	Relationship    DevelopmentTechnique `json:"relationship"`
	RelatedTo       string               `json:"relatedTo,omitempty"`
	Confidence      float64              `json:"confidence"`
	Transposition   int                  `json:"transposition,omitempty"`
}

// SubPhrase is an approximately one-measure unit.
type SubPhrase struct {
	Index        int      `json:"index"`
	StartMeasure int      `json:"startMeasure"`
	EndMeasure   int      `json:"endMeasure"`
	StartBeat    float64  `json:"startBeat"`
	EndBeat      float64  `json:"endBeat"`
	Notes        []Note   `json:"notes"`
	Motives      []Motive `json:"motives"`
	Material     string   `json:"material"`
	SimilarTo    string   `json:"similarTo,omitempty"`
	Similarity   float64  `json:"similarity,omitempty"`
}

// Closure is the open/closed state of a phrase or period.
type Closure int

const (
	ClosureOpen Closure = iota
	ClosureClosed
)

// PhraseRelationship describes how a phrase relates to its predecessor.
type PhraseRelationship int

const (
	PhraseRelationNone PhraseRelationship = iota
	PhraseRelationParallel
	PhraseRelationContrasting
	PhraseRelationRepetition
	PhraseRelationDevelopment
	PhraseRelationSequence
)

// Phrase is a 2-12-measure unit closing on a cadence.
type Phrase struct {
	Index          int                `json:"index"`
	StartMeasure   int                `json:"startMeasure"`
	EndMeasure     int                `json:"endMeasure"`
	Cadence        *Cadence           `json:"cadence,omitempty"`
	Notes          []Note             `json:"notes"`
	SubPhrases     []SubPhrase        `json:"subPhrases"`
	Material       string             `json:"material"`
	Closure        Closure            `json:"closure"`
	Relationship   PhraseRelationship `json:"relationship,omitempty"`
	HeadSimilarity float64            `json:"headSimilarity,omitempty"`
}

// Length returns endMeasure-startMeasure+1.
func (p Phrase) Length() int { return p.EndMeasure - p.StartMeasure + 1 }

// PeriodType classifies how a period's phrases relate to each other.
type PeriodType int

const (
	PeriodParallel PeriodType = iota
	PeriodContrasting
	PeriodSequential
	PeriodThreePhrase
	PeriodFourPhrase
	PeriodCompound
)

// Proportion describes phrase-length symmetry within a period.
type Proportion int

const (
	ProportionSquare Proportion = iota
	ProportionRegular
	ProportionNonSquare
)

// Period groups phrases into a paragraph-level unit.
type Period struct {
	Index        int        `json:"index"`
	StartMeasure int        `json:"startMeasure"`
	EndMeasure   int        `json:"endMeasure"`
	Phrases      []Phrase   `json:"phrases"`
	PhraseCount  int        `json:"phraseCount"`
	Type         PeriodType `json:"type"`
	Proportion   Proportion `json:"proportion"`
	Closure      Closure    `json:"closure"`
	Material     string     `json:"material"`
	Cadence      *Cadence   `json:"cadence,omitempty"`
}

// FormType is the overall form label.
type FormType int

const (
	FormOnePart FormType = iota
	FormBinaryParallel
	FormBinaryRounded
	FormTernaryParallel
	FormTernarySimple
	FormTernaryCompound
	FormSonata
	FormRondo
	FormVariation
	FormAABA
	FormVerseChorus
)

func (f FormType) String() string {
	switch f {
	case FormOnePart:
		return "one_part"
	case FormBinaryParallel:
		return "binary_parallel"
	case FormBinaryRounded:
		return "binary_rounded"
	case FormTernaryParallel:
		return "ternary_parallel"
	case FormTernarySimple:
		return "ternary_simple"
	case FormTernaryCompound:
		return "ternary_compound"
	case FormSonata:
		return "sonata"
	case FormRondo:
		return "rondo"
	case FormVariation:
		return "variation"
	case FormAABA:
		return "aaba"
	case FormVerseChorus:
		return "verse_chorus"
	default:
		return "one_part"
	}
}

// MiddleSectionType classifies a ternary B section.
type MiddleSectionType int

const (
	MiddleEpisode MiddleSectionType = iota
	MiddleDevelopment
	MiddleTrio
)

// SectionFunction describes a section's structural role.
type SectionFunction string

const (
	FunctionExposition     SectionFunction = "exposition"
	FunctionDevelopment    SectionFunction = "development"
	FunctionRecapitulation SectionFunction = "recapitulation"
	FunctionRefrain        SectionFunction = "refrain"
	FunctionEpisode        SectionFunction = "episode"
	FunctionTheme          SectionFunction = "theme"
	FunctionVariation      SectionFunction = "variation"
	FunctionIntroduction   SectionFunction = "introduction"
	FunctionCoda           SectionFunction = "coda"
	FunctionCodetta        SectionFunction = "codetta"
	FunctionTransition     SectionFunction = "transition"
	FunctionVerse          SectionFunction = "verse"
	FunctionChorus         SectionFunction = "chorus"
	FunctionA              SectionFunction = "A"
	FunctionB              SectionFunction = "B"
)

// Section is one labelled region of the form.
type Section struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	StartMeasure  int               `json:"startMeasure"`
	EndMeasure    int               `json:"endMeasure"`
	Function      SectionFunction   `json:"function"`
	Periods       []Period          `json:"periods"`
	MiddleType    MiddleSectionType `json:"middleType,omitempty"`
	Components    []string          `json:"components,omitempty"`
	VariationType string            `json:"variationType,omitempty"`
	IsRecurrence  bool              `json:"isRecurrence,omitempty"`
	RecapType     string            `json:"recapitulationType,omitempty"`
	Confidence    float64           `json:"confidence,omitempty"`
}

// FormAnalysis is the top-level form classification.
type FormAnalysis struct {
	FormType    FormType  `json:"formType"`
	Sections    []Section `json:"sections"`
	Confidence  float64   `json:"confidence"`
	Description string    `json:"description"`
}

// MaterialPattern summarizes the material-letter sequence across periods.
type MaterialPattern struct {
	Pattern           string       `json:"pattern"`
	Counts            map[byte]int `json:"counts"`
	MainMaterial      byte         `json:"mainMaterial"`
	HasRecapitulation bool         `json:"hasRecapitulation"`
}

// MeasureRange is a contiguous measure span.
type MeasureRange struct {
	StartMeasure int `json:"startMeasure"`
	EndMeasure   int `json:"endMeasure"`
}

// Auxiliaries holds the structures outside the period/section hierarchy:
// introduction, coda/codetta, inter-period transitions, and overlong
// phrase extensions.
type Auxiliaries struct {
	Introduction *MeasureRange  `json:"introduction,omitempty"`
	Coda         *MeasureRange  `json:"coda,omitempty"`
	Codetta      *MeasureRange  `json:"codetta,omitempty"`
	Transitions  []MeasureRange `json:"transitions,omitempty"`
	Extensions   []int          `json:"extensions,omitempty"` // phrase indices
}

// StructureType enumerates the tree-node levels.
type StructureType int

const (
	TypeMotive StructureType = iota
	TypeSubPhrase
	TypePhrase
	TypePeriod
	TypeTheme
	TypeSection
)

func (t StructureType) String() string {
	switch t {
	case TypeMotive:
		return "motive"
	case TypeSubPhrase:
		return "subphrase"
	case TypePhrase:
		return "phrase"
	case TypePeriod:
		return "period"
	case TypeTheme:
		return "theme"
	case TypeSection:
		return "section"
	default:
		return "section"
	}
}

// UncertaintyLevel is the qualitative confidence band a node's visual style
// is derived from.
type UncertaintyLevel int

const (
	UncertaintyLow UncertaintyLevel = iota
	UncertaintyMedium
	UncertaintyHigh
	UncertaintyVeryHigh
)

func (u UncertaintyLevel) String() string {
	switch u {
	case UncertaintyLow:
		return "low"
	case UncertaintyMedium:
		return "medium"
	case UncertaintyHigh:
		return "high"
	default:
		return "very_high"
	}
}

// LineStyle is the node border rendering hint.
type LineStyle int

const (
	LineSolid LineStyle = iota
	LineDashed
	LineDotted
)

func (l LineStyle) String() string {
	switch l {
	case LineSolid:
		return "solid"
	case LineDashed:
		return "dashed"
	default:
		return "dotted"
	}
}

// VisualStyle is the node's rendering hint, a pure function of confidence.
type VisualStyle struct {
	LineStyle        LineStyle        `json:"lineStyle"`
	Opacity          float64          `json:"opacity"`
	BorderWidth      int              `json:"borderWidth"`
	UncertaintyLevel UncertaintyLevel `json:"uncertaintyLevel"`
}

// Features is the typed bag of role-relevant optionals a node may carry.
type Features struct {
	Cadence    *Cadence           `json:"cadence,omitempty"`
	PeriodType *PeriodType        `json:"periodType,omitempty"`
	Proportion *Proportion        `json:"proportion,omitempty"`
	Closure    *Closure           `json:"closure,omitempty"`
	Function   *SectionFunction   `json:"function,omitempty"`
	MiddleType *MiddleSectionType `json:"middleType,omitempty"`
	FormType   *FormType          `json:"formType,omitempty"`
}

// TooltipData carries the used-features summary and detection details
// surfaced to the UI for a node.
type TooltipData struct {
	UsedFeatures     []string           `json:"usedFeatures"`
	SimilarityScores map[string]float64 `json:"similarityScores,omitempty"`
	DetectionDetails map[string]string  `json:"detectionDetails,omitempty"`
	ModelVersion     string             `json:"modelVersion"`
}

// StructureNode is one entity in the structure tree. Trees are
// arena-allocated: Children/ParentRef are string IDs keying the owning
// Tree's node map, not pointers.
type StructureNode struct {
	ID           string        `json:"id"`
	Type         StructureType `json:"type"`
	StartMeasure int           `json:"startMeasure"`
	EndMeasure   int           `json:"endMeasure"`
	Children     []string      `json:"children"`
	ParentRef    string        `json:"parent,omitempty"`
	Material     string        `json:"material"`
	Confidence   float64       `json:"confidence"`
	Features     Features      `json:"features"`
	VisualStyle  VisualStyle   `json:"visualStyle"`
	TooltipData  TooltipData   `json:"tooltipData"`
}
