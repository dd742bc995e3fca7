package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Colour is an RGBA colour with components in [0, 1].
type Colour = Vec4

/**
 * @brief a 4x4 matrix, typically used to represent object transformations.
 * Points are row vectors and are transformed as p' = p * M, so the
 * translation lives in Data[12..14].
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the extents of a 2d object.
 */
type Extents2D struct {
	/** @brief The minimum extents of the object. */
	Min Vec2
	/** @brief The maximum extents of the object. */
	Max Vec2
}

// Width of the extents along x.
func (e Extents2D) Width() float32 {
	return e.Max.X - e.Min.X
}

// Height of the extents along y.
func (e Extents2D) Height() float32 {
	return e.Max.Y - e.Min.Y
}

// Contains reports whether (x, y) lies inside the extents, borders included.
func (e Extents2D) Contains(x, y float32) bool {
	return x >= e.Min.X && x <= e.Max.X && y >= e.Min.Y && y <= e.Max.Y
}

/**
 * @brief Represents the transform of an object in the world.
 * NOTE: The properties of this should not be edited directly, but
 * done via the setters to ensure proper matrix generation.
 */
type Transform struct {
	/** @brief The position in the world. */
	Position Vec3
	/** @brief The rotation in the world as Euler angles in radians (XYZ order). */
	EulerRotation Vec3
	/** @brief The scale in the world. */
	Scale Vec3
	/**
	 * @brief Indicates if the position, rotation or scale have changed,
	 * indicating that the local matrix needs to be recalculated.
	 */
	IsDirty bool
	/**
	 * @brief The local transformation matrix, updated whenever
	 * the position, rotation or scale have changed.
	 */
	Local Mat4
	/** @brief A pointer to a parent transform if one is assigned. Can also be null. */
	Parent *Transform
}
