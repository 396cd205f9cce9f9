package core

import "math"

// SRGBToLinear converts one sRGB-encoded channel in [0,1] to linear.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}

// LinearToSRGB is the inverse of SRGBToLinear.
func LinearToSRGB(c float32) float32 {
	c = clamp01(c)
	if c <= 0.0031308 {
		return c * 12.92
	}
	return float32(1.055*math.Pow(float64(c), 1/2.4) - 0.055)
}

var srgbToLinearLUT = func() (lut [256]float32) {
	for i := range lut {
		lut[i] = SRGBToLinear(float32(i) / 255)
	}
	return lut
}()

func linear8(c uint8) float32 { return srgbToLinearLUT[c] }

func srgb8(c float32) uint8 {
	return uint8(LinearToSRGB(c)*255 + 0.5)
}
