package core

// Color is a palette slot for a canvas cell. The platform layer maps slots to
// terminal colors.
type Color uint8

// Palette slots used by the level map.
const (
	ColorDefault Color = iota
	ColorOrigin
	ColorDestination
	ColorWitness
	ColorSwitch
	ColorGate
	ColorMirror
	ColorVoid
	ColorEdge
	ColorHidden
	ColorPlayer
	ColorActive
)
