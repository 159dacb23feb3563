package motion

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// progress maps elapsed time onto [0, 1] over span seconds.
func progress(elapsed, span float64) float64 {
	if span <= 0 {
		return 1
	}
	return clamp01(elapsed / span)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// easeOutQuart decelerates towards the end: 1-(1-t)^4.
func easeOutQuart(t float64) float64 {
	return 1 - pow(1-t, 4)
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
