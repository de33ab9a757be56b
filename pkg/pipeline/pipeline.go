// Package pipeline provides the core visualization pipeline for peoplepack.
//
// This package implements the complete load → layout → render pipeline used
// by every CLI command and by the HTTP host. Centralizing it keeps caching,
// defaults and validation identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a record snapshot from a [source.Source]
//  2. Layout: Build the category hierarchy, pack it and place badges and tags
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Width:   1200,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, src, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	snap, err := runner.Load(ctx, src, opts)
//	sc, err := runner.Layout(ctx, snap, opts)
//	artifacts, err := runner.Render(ctx, sc, snap, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peoplepack/pkg/badge"
	"github.com/matzehuels/peoplepack/pkg/cache"
	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/label"
	"github.com/matzehuels/peoplepack/pkg/pack"
	"github.com/matzehuels/peoplepack/pkg/render/styles"
	"github.com/matzehuels/peoplepack/pkg/responsive"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and HTTP host
// =============================================================================

const (
	// DefaultWidth is the default container width in pixels.
	DefaultWidth = 1200.0

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0
)

// Weighting modes.
const (
	// WeightMembers sizes leaf circles by head count.
	WeightMembers = "members"

	// WeightHours sizes leaf circles by the assignment hours of their members.
	WeightHours = "hours"
)

// Views.
const (
	// ViewPack is the circle-packing view.
	ViewPack = "pack"

	// ViewOrgChart is the graphviz org chart of the same hierarchy.
	ViewOrgChart = "orgchart"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// PackFormats lists the formats of the pack view.
var PackFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// OrgChartFormats lists the formats of the org chart view.
var OrgChartFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT}

// Views lists the supported views.
var Views = []string{ViewPack, ViewOrgChart}

// WeightModes lists the supported weighting modes.
var WeightModes = []string{WeightMembers, WeightHours}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Refresh bool `json:"refresh,omitempty"` // Bypass the snapshot cache

	// Layout options
	Width       float64   `json:"width,omitempty"`
	Height      float64   `json:"height,omitempty"` // Zero derives the height from the width
	Margin      float64   `json:"margin,omitempty"`
	Padding     []float64 `json:"padding,omitempty"` // Per depth; the last entry repeats
	WeightBy    string    `json:"weight_by,omitempty"`
	CatchAll    string    `json:"catch_all,omitempty"`
	SubCatchAll string    `json:"sub_catch_all,omitempty"`
	Marker      string    `json:"marker,omitempty"`

	// Render options
	View        string   `json:"view,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Members     bool     `json:"members,omitempty"` // Org chart: list people under their group
	Title       string   `json:"title,omitempty"`
	Scale       float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger    `json:"-"`
	Measurer label.Measurer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the loaded record set.
	Snapshot *roster.Snapshot

	// SnapshotHash is the content hash of the snapshot.
	SnapshotHash string

	// Scene is the computed layout.
	Scene *scene.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	People     int
	Circles    int
	Badges     int
	Overflow   int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the snapshot came from cache
	LayoutHit bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the full
// pipeline. Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 && o.Width > 0 {
		o.Height = math.Max(responsive.DefaultMinHeight, o.Width*responsive.DefaultAspectRatio)
	}
	if o.Margin == 0 {
		o.Margin = pack.DefaultMargin
	}
	if o.WeightBy == "" {
		o.WeightBy = WeightMembers
	}
	if o.Marker == "" {
		o.Marker = badge.DefaultMarker
	}
	if o.Measurer == nil {
		o.Measurer = label.FixedMeasurer{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateSize("width", o.Width); err != nil {
		return err
	}
	if err := errors.ValidateSize("height", o.Height); err != nil {
		return err
	}
	if o.Margin < 0 || math.IsNaN(o.Margin) || math.IsInf(o.Margin, 0) {
		return errors.New(errors.ErrCodeInvalidSize, "margin must be a non-negative number, got %v", o.Margin)
	}
	for i, p := range o.Padding {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return errors.New(errors.ErrCodeInvalidSize, "padding[%d] must be a non-negative number, got %v", i, p)
		}
	}
	if !contains(WeightModes, o.WeightBy) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid weight_by: %q (must be one of: members, hours)", o.WeightBy)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.View == "" {
		o.View = ViewPack
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = styles.NameSimple
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if !contains(Views, o.View) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid view: %q (must be one of: pack, orgchart)", o.View)
	}
	valid := PackFormats
	if o.IsOrgChart() {
		valid = OrgChartFormats
	}
	for _, f := range o.Formats {
		if err := errors.ValidateFormat(f, valid); err != nil {
			return err
		}
	}
	if err := errors.ValidateStyle(o.Style, styles.Names); err != nil {
		return err
	}
	if !(o.Scale > 0) || math.IsInf(o.Scale, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return nil
}

// IsOrgChart reports whether the org chart view is selected.
func (o *Options) IsOrgChart() bool {
	return o.View == ViewOrgChart
}

// PaddingAt returns the padding kept inside a node at depth. Without
// configured padding the packing engine default applies.
func (o *Options) PaddingAt(depth int) float64 {
	if len(o.Padding) == 0 {
		return pack.DefaultPadding(depth)
	}
	if depth < len(o.Padding) {
		return o.Padding[depth]
	}
	return o.Padding[len(o.Padding)-1]
}

// SnapshotKeyOpts returns cache key options for snapshot loading.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{}
}

// SceneKeyOpts returns cache key options for layout computation.
func (o *Options) SceneKeyOpts() cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		Width:       o.Width,
		Height:      o.Height,
		Margin:      o.Margin,
		Padding:     o.Padding,
		WeightBy:    o.WeightBy,
		CatchAll:    o.CatchAll,
		SubCatchAll: o.SubCatchAll,
		Marker:      o.Marker,
		Measurer:    measurerName(o.Measurer),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	detail := o.Interactive
	if o.IsOrgChart() {
		detail = o.Members
	}
	k := cache.ArtifactKeyOpts{
		Format:      o.View + "/" + format,
		Style:       o.Style,
		Interactive: detail,
		Title:       o.Title,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

func measurerName(m label.Measurer) string {
	if m == nil {
		return ""
	}
	if f, ok := m.(label.FixedMeasurer); ok {
		return fmt.Sprintf("fixed:%g", f.CharWidth)
	}
	if n, ok := m.(interface{ Name() string }); ok {
		return n.Name()
	}
	return reflect.TypeOf(m).String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
