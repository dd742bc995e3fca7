package math

// Three coordinate systems are used by the tracker:
//
//   - frame space: raw render pixels, (0,0) at the bottom-left corner, (w,h) at the top-right.
//     The y axis points up as in the host; code that reads frame pixels
//     top-down must flip y as h - y.
//   - image space: origin at the frame centre, one unit equals the frame width on BOTH axes.
//   - region space: on-screen pixels of the 3D view the camera frame is drawn in.

// ImageSpaceToFrame converts an image space point to frame pixels.
// Both axes are scaled by the frame width.
func ImageSpaceToFrame(x, y, w, h float32) (float32, float32) {
	return (x + 0.5) * w, y*w + 0.5*h
}

// FrameToImageSpace is the inverse of ImageSpaceToFrame. A zero width is treated as 1.
func FrameToImageSpace(px, py, w, h float32) (float32, float32) {
	w = nonZero(w)
	return px/w - 0.5, (py - 0.5*h) / w
}

// ImageSpaceToRegion maps an image space point onto the screen given the
// rectangle the camera frame currently occupies.
func ImageSpaceToRegion(x, y float32, border Extents2D) (float32, float32) {
	sc := border.Width()
	cx := (border.Min.X + border.Max.X) * 0.5
	cy := (border.Min.Y + border.Max.Y) * 0.5
	return cx + x*sc, cy + y*sc
}

// RegionToImageSpace is the inverse of ImageSpaceToRegion. A degenerate border
// of zero width is treated as one pixel wide.
func RegionToImageSpace(x, y float32, border Extents2D) (float32, float32) {
	sc := nonZero(border.Width())
	cx := (border.Min.X + border.Max.X) * 0.5
	cy := (border.Min.Y + border.Max.Y) * 0.5
	return (x - cx) / sc, (y - cy) / sc
}

// PixelRelativeSize returns the size of one screen pixel in image space units.
func PixelRelativeSize(border Extents2D) float32 {
	return 1.0 / nonZero(border.Width())
}

/**
 * @brief Creates a pinhole projection matrix from physical camera parameters.
 * The result maps camera space points (camera looking down -Z) to frame pixels
 * after the homogeneous divide.
 *
 * @param w The frame width in pixels.
 * @param h The frame height in pixels.
 * @param focal The focal length in millimetres.
 * @param sensor The sensor width in millimetres.
 * @param near The near clipping plane distance.
 * @param far The far clipping plane distance.
 * @param scale Extra x/y scale, see CompensateViewScale.
 * @return A new projection matrix.
 */
func ProjectionMatrix(w, h, focal, sensor, near, far, scale float32) Mat4 {
	zDiff := near - far
	flToSw := focal / sensor
	return NewMat4FromRows(
		[4]float32{scale * w * flToSw, 0, 0, 0},
		[4]float32{0, scale * w * flToSw, 0, 0},
		[4]float32{-w / 2, -h / 2, (near + far) / zDiff, -1},
		[4]float32{0, 0, 2 * near * far / zDiff, 0},
	)
}

// CompensateViewScale returns the projection scale needed when the sensor is
// fitted to the frame height (portrait frames). Landscape frames need none.
func CompensateViewScale(w, h float32) float32 {
	if w == 0 || h == 0 {
		return 1.0
	}
	if w >= h {
		return 1.0
	}
	return h / w
}

// CameraZoomFactor converts a view camera zoom value into the fraction of the
// region the camera frame spans.
func CameraZoomFactor(zoom float32) float32 {
	f := zoom*0.01 + K_SQRT_ONE_OVER_TWO
	return f * f
}

// CameraBorder computes the on-screen rectangle of the camera frame inside a
// region of regionW x regionH pixels. offX and offY are the view camera offset
// in region-relative units. The frame is auto-fitted along its larger side.
func CameraBorder(regionW, regionH, renderW, renderH, zoom, offX, offY float32) Extents2D {
	f := CameraZoomFactor(zoom)
	w := regionW
	h := nonZero(regionH)
	rx := nonZero(renderW)
	ry := nonZero(renderH)

	a1 := w / h
	a2 := rx / ry

	ox := offX * w * 2 * f
	oy := offY * h * 2 * f

	var kx, ky float32
	if a1 >= 1.0 {
		if a2 >= 1.0 {
			// landscape frame in a landscape view
			kx = f
			ky = f * a1 / a2
		} else {
			kx = f * a2
			ky = f * a1
		}
	} else {
		if a2 < 1.0 {
			// portrait frame in a portrait view
			kx = f * a2 / a1
			ky = f
		} else {
			kx = f / a1
			ky = f / a2
		}
	}

	return Extents2D{
		Min: Vec2{w*0.5 - kx*w*0.5 - ox, h*0.5 - ky*h*0.5 - oy},
		Max: Vec2{w*0.5 + kx*w*0.5 - ox, h*0.5 + ky*h*0.5 - oy},
	}
}

// NearestPoint returns the index of the point closest to (x, y) whose squared
// distance is below maxDist2, and that squared distance. When no point
// qualifies it returns (-1, maxDist2).
func NearestPoint(x, y float32, points []Vec2, maxDist2 float32) (int, float32) {
	d2 := maxDist2
	index := -1
	for i, p := range points {
		dx := p.X - x
		dy := p.Y - y
		d := dx*dx + dy*dy
		if d < d2 {
			d2 = d
			index = i
		}
	}
	return index, d2
}

// PointsInsideRectangle returns, in ascending order, the indices of the points
// inside the rectangle spanned by two opposite corners.
func PointsInsideRectangle(points []Vec2, x1, y1, x2, y2 float32) []int {
	rect := Extents2D{
		Min: Vec2{min(x1, x2), min(y1, y2)},
		Max: Vec2{max(x1, x2), max(y1, y2)},
	}
	inside := []int{}
	for i, p := range points {
		if rect.Contains(p.X, p.Y) {
			inside = append(inside, i)
		}
	}
	return inside
}

// ProjectPoints transforms points by m and performs the homogeneous divide.
// A zero w is treated as 1.
func ProjectPoints(points []Vec3, m Mat4) []Vec2 {
	out := make([]Vec2, len(points))
	for i, p := range points {
		v := p.ToVec4(1.0).Transform(m)
		w := nonZero(v.W)
		out[i] = Vec2{v.X / w, v.Y / w}
	}
	return out
}

// BarycentricPoint returns a*w0 + b*w1 + c*w2.
func BarycentricPoint(a, b, c Vec3, weights [3]float32) Vec3 {
	return a.MulScalar(weights[0]).Add(b.MulScalar(weights[1])).Add(c.MulScalar(weights[2]))
}

// Barycentric2D returns the barycentric weights of p in the triangle abc and
// whether p lies inside it. Degenerate triangles never contain a point.
func Barycentric2D(p, a, b, c Vec2) (Vec3, bool) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	den := v0.X*v1.Y - v1.X*v0.Y
	if kabs(den) < K_FLOAT_EPSILON {
		return Vec3{}, false
	}
	v := (v2.X*v1.Y - v1.X*v2.Y) / den
	w := (v0.X*v2.Y - v2.X*v0.Y) / den
	u := 1.0 - v - w
	inside := u >= 0 && v >= 0 && w >= 0
	return Vec3{u, v, w}, inside
}
