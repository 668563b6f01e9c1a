package components

// Body holds the collision and draw radius of an entity.
type Body struct {
	Radius float64
}
