package components

// Payload is the kind-specific data an entity is created with. It is a closed set:
// ResourcePayload, BuildingPayload, AgentPayload and ObstaclePayload.
type Payload interface {
	Kind() Kind
	payload()
}

// ResourcePayload spawns a harvestable natural resource.
type ResourcePayload struct {
	Natural   NaturalResource
	Occupable Occupable
}

// BuildingPayload spawns a structure. Optional parts are nil when absent.
type BuildingPayload struct {
	Building  Building
	Occupable *Occupable
	Storage   *Storage
	Extractor *Extractor
}

// AgentPayload spawns a villager. New villagers start wandering.
type AgentPayload struct {
	Villager  Villager
	Wandering Wandering
}

// ObstaclePayload spawns a blocking region such as water.
type ObstaclePayload struct{}

func (ResourcePayload) Kind() Kind { return KindResource }
func (BuildingPayload) Kind() Kind { return KindBuilding }
func (AgentPayload) Kind() Kind    { return KindAgent }
func (ObstaclePayload) Kind() Kind { return KindObstacle }

func (ResourcePayload) payload() {}
func (BuildingPayload) payload() {}
func (AgentPayload) payload()    {}
func (ObstaclePayload) payload() {}
