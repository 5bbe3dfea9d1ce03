package scaling

import (
	"tailpost/internal/metrics"
	"tailpost/internal/relay/shared"
	"time"
)

type Instance struct {
	PollInterval time.Duration
	MetricStore  *metrics.Registry
	Managers     shared.Managers
}
