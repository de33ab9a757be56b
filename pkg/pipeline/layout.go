package pipeline

import (
	"github.com/matzehuels/peoplepack/pkg/hierarchy"
	"github.com/matzehuels/peoplepack/pkg/pack"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Rules returns the grouping rules for a snapshot with the configured
// catch-all bucket names applied.
func Rules(snap *roster.Snapshot, opts Options) hierarchy.Rules {
	rules := hierarchy.RulesFromSnapshot(snap)
	if opts.CatchAll != "" {
		rules.CatchAll = opts.CatchAll
	}
	if opts.SubCatchAll != "" {
		rules.SubCatchAll = opts.SubCatchAll
	}
	return rules
}

// BuildHierarchy groups the people of a snapshot into the category tree.
func BuildHierarchy(snap *roster.Snapshot, opts Options) *hierarchy.Node {
	var people []*roster.Person
	if snap != nil {
		people = snap.People
	}
	return hierarchy.Build(people, Rules(snap, opts))
}

// ComputeScene builds the hierarchy of a snapshot and lays it out. The
// result is a pure function of the snapshot and the layout options.
func ComputeScene(snap *roster.Snapshot, opts Options) *scene.Scene {
	opts.SetLayoutDefaults()

	packOpts := []pack.Option{
		pack.WithMargin(opts.Margin),
		pack.WithPadding(opts.PaddingAt),
	}
	if opts.WeightBy == WeightHours {
		packOpts = append(packOpts, pack.WithWeight(HoursWeight(snap)))
	}

	root := BuildHierarchy(snap, opts)
	return scene.Compose(root, scene.Size{Width: opts.Width, Height: opts.Height},
		scene.WithPackOptions(packOpts...),
		scene.WithMeasurer(opts.Measurer),
		scene.WithMarker(opts.Marker),
	)
}

// HoursWeight weighs a leaf by the summed assignment hours of its members.
// Leaves whose members have no hours get zero weight and are left out.
func HoursWeight(snap *roster.Snapshot) pack.WeightFunc {
	hours := snap.HoursByPerson()
	return func(n *hierarchy.Node) float64 {
		var sum float64
		for _, p := range n.Members {
			sum += hours[p.ID]
		}
		return sum
	}
}
