package beats

import (
	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Optional mirror output speaking the lumberjack protocol. Records already
// accepted by the store can additionally be fanned out to a local beats
// collector for ad-hoc inspection.
type OutModule struct {
	sink *lumberjack.SyncClient
}
