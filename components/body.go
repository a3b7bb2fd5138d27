package components

// Planet is a circular body whose perimeter entities stick to.
// Its world-space center lives in the entity's Transform; both are fixed after setup.
type Planet struct {
	Name   string
	Radius float32
	Main   bool // villager spawns and the initial stockpile go here
}
