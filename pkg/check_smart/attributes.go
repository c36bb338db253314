package check_smart

import (
	"github.com/biola/nagios-plugins/pkg/threshold"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// attributeThresholds contains the raw value limits per SMART attribute id.
// Reaching a limit counts.
var attributeThresholds = map[int]threshold.Threshold{
	// Reallocated_Sector_Count
	5: smartThreshold(1, 50),
	// Reported_Uncorrectable_Errors
	187: smartThreshold(1, 3),
	// Command_Timeout
	188: smartThreshold(1, 13000),
	// Current_Pending_Sector_Count
	197: smartThreshold(1, 2),
	// Offline_Uncorrectable
	198: smartThreshold(1, 2),
}

func smartThreshold(warning, critical float64) threshold.Threshold {
	return threshold.New(warning, critical, threshold.Ascending, threshold.Inclusive)
}

// AttributeIDs returns all checked attribute ids in ascending order.
func AttributeIDs() []int {
	ids := maps.Keys(attributeThresholds)
	slices.Sort(ids)

	return ids
}

// lookupThreshold returns the threshold for an attribute id.
func lookupThreshold(id int) (threshold.Threshold, bool) {
	th, ok := attributeThresholds[id]

	return th, ok
}
