package player

import "math"

// silentGain is the beep gain used for level 0, low enough to be inaudible.
const silentGain = -10

// ClampVolume limits level to [0, 1].
func ClampVolume(level float64) float64 {
	return min(max(level, 0), 1)
}

// levelToVolume maps a linear level to beep's base 2 gain: full level is 0,
// each halving removes one unit.
func levelToVolume(level float64) float64 {
	switch level = ClampVolume(level); level {
	case 0:
		return silentGain
	case 1:
		return 0
	default:
		return math.Log2(level)
	}
}
