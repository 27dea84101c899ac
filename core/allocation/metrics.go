package allocation

import "github.com/prometheus/client_golang/prometheus"

var (
	unitsClaimed   prometheus.Counter
	slotConflicts  prometheus.Counter
	capacityBlocks prometheus.Counter
)

func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter) {
	claimed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_units_claimed_total",
		Help: "Number of person-month units placed into a slot",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_slot_conflicts_total",
		Help: "Number of slots skipped because another project owned them",
	})
	blocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_capacity_blocks_total",
		Help: "Number of slots skipped because the year was at capacity",
	})
	return claimed, conflicts, blocks
}

func init() {
	unitsClaimed, slotConflicts, capacityBlocks = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers the engine collectors on reg, or on the
// default registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(unitsClaimed, slotConflicts, capacityBlocks)
}

// ResetMetrics recreates the collectors for tests and registers them on reg
// when it is not nil.
func ResetMetrics(reg prometheus.Registerer) {
	unitsClaimed, slotConflicts, capacityBlocks = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
