// Package pkg provides the core libraries for peoplepack people charts.
//
// # Overview
//
// peoplepack lays out a roster of people as a circle-packing chart. Each
// category becomes a circle sized by its weight, sub-categories nest inside
// their parent, and every person appears as a badge in each group they belong
// to. The pkg directory is organized into four areas:
//
//  1. Records: [roster], [source], [io]
//  2. Layout: [hierarchy], [pack], [badge], [label], [scene]
//  3. Output: [render], [interact], [responsive]
//  4. Orchestration: [pipeline], [cache], [config], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Roster file / MongoDB
//	         ↓
//	    [source] package (load a snapshot)
//	         ↓
//	    [hierarchy] package (group people into nested categories)
//	         ↓
//	    [pack], [badge], [label] packages (circles, badges, tags)
//	         ↓
//	    [scene] package (one layout per container size)
//	         ↓
//	    SVG/PDF/PNG/JSON output, or the org chart via graphviz
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/peoplepack/pkg/pipeline"
//	    "github.com/matzehuels/peoplepack/pkg/source/file"
//	)
//
//	src, _ := file.New("team.yaml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), src, pipeline.Options{
//	    Width:   1200,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// [roster] - The immutable record snapshot: people, skills, categories,
// targets, roles and assignments.
//
// [source] - Where snapshots come from. [source/file] reads YAML, JSON or
// TOML roster files and watches them for changes; [source/mongo] reads the
// document store.
//
// [hierarchy] - Turns a snapshot into the category tree, including the
// catch-all buckets for people without a category.
//
// [pack] - Front-chain circle packing with size-adaptive padding.
//
// [badge] - Fits person badges into leaf circles on a hexagonal grid.
//
// [scene] - Composes circles, labels and badges for one container size.
//
// [responsive] - Recomputes the scene when the container is resized, keeping
// only the latest pending size.
//
// [interact] - Hover tooltips and click-through detail views.
//
// [pipeline] - Load, layout and render with content-addressed caching.
package pkg
