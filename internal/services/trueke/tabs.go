package trueke

import (
	"github.com/truekeo/truekeo-api/internal/models"
)

// tabPriority is the order in which the "my truekes" screen probes for a tab
// worth landing on: an exchange waiting on you beats one you could still
// edit, which beats history.
var tabPriority = []models.TruekeStatus{
	models.TruekeReserved,
	models.TruekeOpen,
	models.TruekeCompleted,
}

// DefaultTab picks the initially selected status tab for a loaded trueke
// list: the first status in priority order with at least one trueke, falling
// back to RESERVED when the list is empty.
func DefaultTab(truekes []models.Trueke) models.TruekeStatus {
	counts := make(map[models.TruekeStatus]int, len(tabPriority))
	for _, t := range truekes {
		counts[t.Status]++
	}
	for _, status := range tabPriority {
		if counts[status] > 0 {
			return status
		}
	}
	return models.TruekeReserved
}
