package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initViewMetrics() {
	r.DatasetSyncsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topology_dataset_syncs_total",
			Help: "Dataset hand-offs to the view, by result (full, unchanged)",
		},
		[]string{"result"},
	)

	r.DatasetNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topology_dataset_nodes",
			Help: "Nodes in the currently rendered dataset",
		},
	)

	r.DatasetLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topology_dataset_links",
			Help: "Links in the currently rendered dataset",
		},
	)

	r.DatasetDanglingLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topology_dataset_dangling_links",
			Help: "Links whose source or target is missing from the dataset",
		},
	)

	r.DescriptorEncodesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topology_descriptor_encodes_total",
			Help: "Node descriptors produced, by pass (full, targeted)",
		},
		[]string{"pass"},
	)

	r.SettingsChangesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topology_settings_changes_total",
			Help: "Applied settings changes, by kind (visual, physics)",
		},
		[]string{"kind"},
	)

	r.HighlightTransitionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topology_highlight_transitions_total",
			Help: "Highlight and focus slot transitions",
		},
		[]string{"slot", "transition"},
	)

	r.CameraMovesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topology_camera_moves_total",
			Help: "Camera fly-to commands, by trigger",
		},
		[]string{"trigger"},
	)
}

func (r *Registry) initSimulationMetrics() {
	r.SimulationReheatsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topology_simulation_reheats_total",
			Help: "Times the force simulation was reheated",
		},
	)

	r.SimulationTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topology_simulation_ticks_total",
			Help: "Force simulation steps executed",
		},
	)

	r.SimulationAlpha = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topology_simulation_alpha",
			Help: "Current simulation temperature",
		},
	)
}
