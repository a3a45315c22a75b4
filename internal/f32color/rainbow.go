package f32color

import "image/color"

// RainbowColours is the size of the Rainbow palette.
const RainbowColours = 12

// Rainbow returns a pastel background for the rotating highlight index.
// Neighbouring indices get clearly different hues.
func Rainbow(index int) color.NRGBA {
	index %= RainbowColours
	if index < 0 {
		index += RainbowColours
	}
	// Stepping by 5 visits every hue once, as gcd(5, 12) == 1.
	hue := float32(index*5%RainbowColours) / RainbowColours
	return HSLA(hue, 0.7, 0.85, 1)
}
