package vision

import "image"

// binary is a foreground mask.
type binary struct {
	w, h int
	on   []bool
}

// dilate grows the mask by a side x side square centred on each pixel.
// Pixels outside the image never contribute. Runs as two sliding-window
// passes so the cost does not depend on side.
func dilate(src binary, side int) binary {
	if side <= 1 {
		return src
	}
	half := side / 2
	w, h := src.w, src.h

	horiz := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := src.on[y*w : (y+1)*w]
		count := 0
		// window [x-half, x+half]
		for x := 0; x < half && x < w; x++ {
			if row[x] {
				count++
			}
		}
		for x := 0; x < w; x++ {
			if in := x + half; in < w && row[in] {
				count++
			}
			if out := x - half - 1; out >= 0 && row[out] {
				count--
			}
			horiz[y*w+x] = count > 0
		}
	}

	out := binary{w: w, h: h, on: make([]bool, w*h)}
	for x := 0; x < w; x++ {
		count := 0
		for y := 0; y < half && y < h; y++ {
			if horiz[y*w+x] {
				count++
			}
		}
		for y := 0; y < h; y++ {
			if in := y + half; in < h && horiz[in*w+x] {
				count++
			}
			if o := y - half - 1; o >= 0 && horiz[o*w+x] {
				count--
			}
			out.on[y*w+x] = count > 0
		}
	}
	return out
}

// components returns the bounding box of every 8-connected foreground
// component, ordered by the raster position of its first pixel.
func components(mask binary) []image.Rectangle {
	w, h := mask.w, mask.h
	seen := make([]bool, w*h)
	var boxes []image.Rectangle
	var stack []int

	for start, on := range mask.on {
		if !on || seen[start] {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		minX, minY, maxX, maxY := start%w, start/w, start%w, start/w

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					j := ny*w + nx
					if mask.on[j] && !seen[j] {
						seen[j] = true
						stack = append(stack, j)
					}
				}
			}
		}
		boxes = append(boxes, image.Rect(minX, minY, maxX+1, maxY+1))
	}
	return boxes
}
