package health

import (
	"fmt"

	"github.com/vyrodovalexey/boombff/internal/snapshot"
)

// RoutesCheckName is the name the routes check is registered under.
const RoutesCheckName = "routes"

// RoutesCheck reports on the active routing snapshot. A gateway with no
// routes still serves static files, so it is degraded, not unhealthy.
func RoutesCheck(source snapshot.Source) CheckFunc {
	return func() Check {
		snap := source.Snapshot()
		if snap == nil {
			return Check{Status: StatusUnhealthy, Message: "no routing snapshot"}
		}

		n := len(snap.Routes())
		if n == 0 {
			return Check{Status: StatusDegraded, Message: "no integrations registered"}
		}
		return Check{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%d routes active (snapshot v%d)", n, snap.Version()),
		}
	}
}
