// Package storage implements the persisted-state export/import:
// a JSON-friendly snapshot of a session (parsed score, audio
// features, alignment, structure tree, visual mappings, preference
// state), marshalled with jsoniter, framed with gzip, and written
// atomically via a temp-file-then-rename.
package storage

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/preference"
	"github.com/schollz/scorelens/internal/tree"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const stateVersion = "1.0.0"

// SessionSnapshot is the `session` block of the export format.
type SessionSnapshot struct {
	SessionID     string               `json:"sessionId"`
	CreatedAt     float64              `json:"createdAt"`
	ParsedScore   model.ParsedScore    `json:"parsedScore"`
	AudioFeatures *model.AudioFeatures `json:"audioFeatures,omitempty"`
	Alignment     *AlignmentSnapshot   `json:"alignment,omitempty"`
}

// AlignmentSnapshot is the `session.alignment` block.
type AlignmentSnapshot struct {
	MeasureToTime map[int]float64 `json:"measureToTime"`
	Confidence    float64         `json:"confidence"`
}

// SerializedNode is one `structure.nodes[id]` entry: the node plus its
// explicit parent/children links. The node itself already carries these
// as string IDs, so the wire shape matches the struct directly; see
// RebuildTree for the two-pass relink on import.
type SerializedNode struct {
	model.StructureNode
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
}

// StructureSnapshot is the `structure` block.
type StructureSnapshot struct {
	Root         string                    `json:"root"`
	Nodes        map[string]SerializedNode `json:"nodes"`
	FormAnalysis model.FormAnalysis        `json:"formAnalysis"`
	Cadences     []model.Cadence           `json:"cadences"`
	Phrases      []model.Phrase            `json:"phrases"`
	Periods      []model.Period            `json:"periods"`
}

// PreferencesSnapshot is the `preferences` block.
type PreferencesSnapshot struct {
	ExampleCount    int                       `json:"exampleCount"`
	AcceptCount     int                       `json:"acceptCount"`
	ModifyCount     int                       `json:"modifyCount"`
	RejectCount     int                       `json:"rejectCount"`
	LearningHistory []preference.HistoryEntry `json:"learningHistory"`
}

// PersistedState is the full export/import wire format.
type PersistedState struct {
	Version        string                        `json:"version"`
	Session        SessionSnapshot               `json:"session"`
	Structure      StructureSnapshot             `json:"structure"`
	VisualMappings map[string]model.VisualScheme `json:"visualMappings"`
	Preferences    PreferencesSnapshot           `json:"preferences"`
}

// BuildState assembles a PersistedState from a session's live components.
func BuildState(sessionID string, createdAt float64, score model.ParsedScore, audio *model.AudioFeatures,
	alignment *AlignmentSnapshot, t *tree.Tree, fa model.FormAnalysis, cadences []model.Cadence,
	phrases []model.Phrase, periods []model.Period, visualMappings map[string]model.VisualScheme, pm *preference.Manager) PersistedState {

	nodes := make(map[string]SerializedNode, len(t.Nodes))
	for id, n := range t.Nodes {
		nodes[id] = SerializedNode{StructureNode: *n, Parent: n.ParentRef, Children: append([]string{}, n.Children...)}
	}

	accept, modify, reject := pm.Counts()
	return PersistedState{
		Version: stateVersion,
		Session: SessionSnapshot{
			SessionID: sessionID, CreatedAt: createdAt,
			ParsedScore: score, AudioFeatures: audio, Alignment: alignment,
		},
		Structure: StructureSnapshot{
			Root: t.RootID, Nodes: nodes, FormAnalysis: fa,
			Cadences: cadences, Phrases: phrases, Periods: periods,
		},
		VisualMappings: visualMappings,
		Preferences: PreferencesSnapshot{
			ExampleCount: pm.ExampleCount(), AcceptCount: accept,
			ModifyCount: modify, RejectCount: reject, LearningHistory: pm.History(),
		},
	}
}

// RebuildTree reconstructs a *tree.Tree from a StructureSnapshot in two
// passes: the first instantiates every node with no links, the second
// wires ParentRef and Children once every node is known to exist.
func RebuildTree(s StructureSnapshot) *tree.Tree {
	t := &tree.Tree{Nodes: map[string]*model.StructureNode{}, RootID: s.Root}

	// Pass 1: create every node, links cleared.
	for id, sn := range s.Nodes {
		node := sn.StructureNode
		node.ParentRef = ""
		node.Children = nil
		t.Nodes[id] = &node
	}

	// Pass 2: link parents and children now that every node exists.
	for id, sn := range s.Nodes {
		node := t.Nodes[id]
		if sn.Parent != "" {
			if _, ok := t.Nodes[sn.Parent]; ok {
				node.ParentRef = sn.Parent
			}
		}
		for _, childID := range sn.Children {
			if _, ok := t.Nodes[childID]; ok {
				node.Children = append(node.Children, childID)
			}
		}
	}
	return t
}

// Save gzip-frames and atomically writes a PersistedState to path: marshal
// with jsoniter, write to a temp file in the same directory, fsync, then
// rename over the destination. The session owns the tree and buffer
// exclusively, so no external lock is needed around the write.
func Save(path string, state PersistedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: marshal state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".scorelens-state-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	gz := gzip.NewWriter(tmp)
	if _, err := gz.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: gzip write: %w", err)
	}
	if err := gz.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: gzip close: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename temp file: %w", err)
	}
	return nil
}

// Load reads and gzip-decompresses a PersistedState written by Save.
func Load(path string) (PersistedState, error) {
	var state PersistedState
	file, err := os.Open(path)
	if err != nil {
		return state, fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return state, fmt.Errorf("storage: gzip reader: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return state, fmt.Errorf("storage: read: %w", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("storage: unmarshal: %w", err)
	}
	return state, nil
}
