package text

import "image"

// dilate grows a coverage mask by radius pixels with a circular kernel,
// taking the maximum coverage under the kernel. This is how outlines are
// stroked: the dilated mask is painted in the outline colour under the fill.
func dilate(src *image.Alpha, radius int) *image.Alpha {
	bounds := src.Bounds()
	result := image.NewAlpha(bounds)
	if radius <= 0 {
		copy(result.Pix, src.Pix)
		return result
	}

	// Kernel offsets inside the disc
	var kernel []image.Point
	r2 := radius * radius
	for ky := -radius; ky <= radius; ky++ {
		for kx := -radius; kx <= radius; kx++ {
			if kx*kx+ky*ky <= r2 {
				kernel = append(kernel, image.Point{X: kx, Y: ky})
			}
		}
	}

	w, h := bounds.Dx(), bounds.Dy()
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x := 0; x < w; x++ {
			v := row[x]
			if v == 0 {
				continue
			}
			// Scatter instead of gather: only covered pixels spread.
			for _, k := range kernel {
				nx, ny := x+k.X, y+k.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				i := ny*result.Stride + nx
				if result.Pix[i] < v {
					result.Pix[i] = v
				}
			}
		}
	}
	return result
}
