package procgen

import (
	"math"
	"strings"

	"github.com/vovakirdan/liminal/internal/core"
	"github.com/vovakirdan/liminal/internal/level"
)

// ShareAlphabet is the share-code alphabet: 32 symbols without 0, 1, I, O.
const ShareAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ShareCodeLength is the number of characters in a share code.
const ShareCodeLength = 6

// Cost model for par time, in ms.
const (
	parPerNode       = 2500.0
	parPerShift      = 1500.0
	perfectParFactor = 0.6
)

// Metadata summarizes a generated level.
type Metadata struct {
	Theme        string  `json:"theme"`
	Seed         uint32  `json:"seed"`
	Difficulty   int     `json:"difficulty"`
	Rating       float64 `json:"rating"`
	NodeCount    int     `json:"node_count"`
	EdgeCount    int     `json:"edge_count"`
	TriggerCount int     `json:"trigger_count"`
	SpecialCount int     `json:"special_count"`
	HiddenCount  int     `json:"hidden_count"`
	DroppedNodes int     `json:"dropped_nodes"`
	Par          float64 `json:"par"`
	Perfect      float64 `json:"perfect"`
	Fingerprint  uint32  `json:"fingerprint"`
	ShareCode    string  `json:"share_code"`
}

func (g *generator) metadata() Metadata {
	m := Metadata{
		Theme:        g.tpl.Theme,
		Seed:         g.cfg.Seed,
		Difficulty:   g.cfg.Difficulty,
		NodeCount:    len(g.nodes),
		EdgeCount:    len(g.edges),
		TriggerCount: len(g.triggers),
		DroppedNodes: g.dropped,
	}

	activation := 0.0
	for i, n := range g.nodes {
		switch n.Type {
		case level.NodeWaypoint, level.NodeOrigin, level.NodeDestination:
		default:
			m.SpecialCount++
		}
		if g.isHidden(i) {
			m.HiddenCount++
		}
		activation += n.Properties.ActivationTime
	}
	shifts := 0
	for _, t := range g.triggers {
		if t.Action == level.ActionDimensionShift {
			shifts++
		}
	}

	ratio := 0.0
	if m.NodeCount > 0 {
		ratio = float64(m.SpecialCount) / float64(m.NodeCount)
	}
	rating := float64(g.cfg.Difficulty) + ratio*3 + float64(m.HiddenCount)*0.1 + float64(len(g.tpl.Dimensions)-1)*0.5
	m.Rating = math.Round(core.ClampF(rating, MinDifficulty, MaxDifficulty)*10) / 10

	m.Par = math.Round(float64(m.NodeCount)*parPerNode + activation + float64(shifts)*parPerShift)
	m.Perfect = math.Round(m.Par * perfectParFactor)

	m.Fingerprint = Fingerprint(g.cfg, g.tpl.Dimensions, m.NodeCount, m.EdgeCount, m.TriggerCount)
	m.ShareCode = ShareCode(m.Fingerprint)
	return m
}

// Fingerprint is a rolling hash over the seed, structure counts, difficulty,
// player count, dimension names and the profile modifiers that changed the
// level. Neutral modifiers leave the hash as if they were absent.
func Fingerprint(cfg Config, dims []level.Dimension, nodes, edges, triggers int) uint32 {
	h := cfg.Seed
	for _, v := range []int{nodes, edges, triggers, cfg.Difficulty, cfg.PlayerCount} {
		h = h*31 + uint32(v)
	}
	for _, d := range dims {
		for _, c := range []byte(d) {
			h = h*31 + uint32(c)
		}
	}
	for _, v := range effectiveModifiers(cfg.Modifiers) {
		h = h*31 + v
	}
	return h
}

// effectiveModifiers returns a tagged value, in thousandths, for every
// modifier that alters generation.
func effectiveModifiers(m Modifiers) []uint32 {
	var out []uint32
	milli := func(v float64) uint32 { return uint32(math.Round(v * 1000)) }
	if m.ReactionTimeScale > 0 && m.ReactionTimeScale != 1 {
		out = append(out, 'r', milli(m.ReactionTimeScale))
	}
	if m.ExplorationTendency > profileThreshold {
		out = append(out, 'e', milli(m.ExplorationTendency))
	}
	if m.WitnessAffinity > profileThreshold {
		out = append(out, 'w', milli(m.WitnessAffinity))
	}
	return out
}

// ShareCode derives the short code players exchange. It keeps 30 bits of the
// fingerprint and cannot be decoded back into a configuration; resolving a
// code needs the table kept by storage.
func ShareCode(fingerprint uint32) string {
	code := make([]byte, ShareCodeLength)
	v := fingerprint
	for i := range code {
		code[i] = ShareAlphabet[v%uint32(len(ShareAlphabet))]
		v /= uint32(len(ShareAlphabet))
	}
	return string(code)
}

// ValidShareCode reports whether s is shaped like a share code.
func ValidShareCode(s string) bool {
	if len(s) != ShareCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(ShareAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
