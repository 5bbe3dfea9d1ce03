package shared

import (
	"tailpost/internal/relay/managers/delivery"
	"tailpost/internal/relay/managers/ingest"
	"tailpost/internal/relay/managers/mux"
)

// Handles to the three pipeline stages, listed sink first since teardown
// runs upstream
type Managers struct {
	Delivery *delivery.InstanceManager
	Mux      *mux.InstanceManager
	In       *ingest.InstanceManager
}
