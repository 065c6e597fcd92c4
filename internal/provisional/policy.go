// Package provisional decides whether a run's output may be published as
// authoritative.
package provisional

import "github.com/wonny/fueltracker/internal/contracts"

// Decide combines cache freshness and current-fetch success into a publish
// decision. Pure function of its two inputs.
//
//	cache fresh | fetch ok | mode        | can_publish
//	yes         | any      | normal      | true
//	no          | true     | provisional | true
//	no          | false    | provisional | false
//
// 신선한 캐시는 현재 fetch 실패보다 우선함 (의도된 동작)
func Decide(cacheFresh, fetchOK bool) contracts.PublishDecision {
	switch {
	case cacheFresh:
		return contracts.PublishDecision{
			Mode:       contracts.ModeNormal,
			CanPublish: true,
			Reason:     "cache is fresh",
		}
	case fetchOK:
		return contracts.PublishDecision{
			Mode:       contracts.ModeProvisional,
			CanPublish: true,
			Reason:     "cache is stale, but current fetch succeeded",
		}
	default:
		return contracts.PublishDecision{
			Mode:       contracts.ModeProvisional,
			CanPublish: false,
			Reason:     "cache is stale and current fetch failed",
		}
	}
}
