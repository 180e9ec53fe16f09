package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/slipmap/pkg/errors"
)

// Visualization types.
const (
	VizTypeTreemap   = "treemap"
	VizTypeWordCloud = "wordcloud"
)

// VizTypes lists every supported visualization type.
var VizTypes = []string{VizTypeTreemap, VizTypeWordCloud}

// ValidateVizType returns an INVALID_VIZ_TYPE error for unknown types.
func ValidateVizType(viz string) error {
	switch viz {
	case VizTypeTreemap, VizTypeWordCloud:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidVizType, "unknown visualization type %q (want %s or %s)",
		viz, VizTypeTreemap, VizTypeWordCloud)
}

// Layout is the unified serialization format for both visualizations.
//
// Check VizType to determine which payload is populated:
//
//	Treemap ("treemap"):
//	  - Nodes: tiles partitioning the Width x Height frame
//	  - ShowTime: renderers append the "XhYm" total to each label
//
//	WordCloud ("wordcloud"):
//	  - Words: placed words with font size and bounding box
//	  - Dropped: labels that found no free position
type Layout struct {
	VizType string  `json:"viz_type" bson:"viz_type"`
	Title   string  `json:"title,omitempty" bson:"title,omitempty"`
	Key     string  `json:"key,omitempty" bson:"key,omitempty"`
	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`

	// Treemap-specific
	Nodes    []TreemapNode `json:"nodes,omitempty" bson:"nodes,omitempty"`
	ShowTime bool          `json:"show_time,omitempty" bson:"show_time,omitempty"`

	// WordCloud-specific
	Words   []WordPlacement `json:"words,omitempty" bson:"words,omitempty"`
	Dropped []string        `json:"dropped,omitempty" bson:"dropped,omitempty"`
}

// IsTreemap returns true if this is a treemap layout.
func (l *Layout) IsTreemap() bool { return l.VizType == VizTypeTreemap }

// IsWordCloud returns true if this is a word-cloud layout.
func (l *Layout) IsWordCloud() bool { return l.VizType == VizTypeWordCloud }

// Frame returns the layout's canvas rectangle anchored at the origin.
func (l *Layout) Frame() Rect { return Rect{W: l.Width, H: l.Height} }

// TreemapNode is one tile of a treemap.
type TreemapNode struct {
	Label string  `json:"label" bson:"label"`
	Value float64 `json:"value" bson:"value"`
	Rect  Rect    `json:"rect" bson:"rect"`
}

// WordPlacement is one word of a word cloud. Position is the center of Box.
type WordPlacement struct {
	Label    string  `json:"label" bson:"label"`
	Value    float64 `json:"value" bson:"value"`
	FontSize float64 `json:"font_size" bson:"font_size"`
	Position Point   `json:"position" bson:"position"`
	Box      Rect    `json:"box" bson:"box"`
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates the viz type and that the frame has positive dimensions.
// A word cloud may legitimately contain no words when every label was
// dropped, but then Dropped must say so.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if err := ValidateVizType(l.VizType); err != nil {
		return Layout{}, err
	}
	if l.Width <= 0 || l.Height <= 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "layout frame must be positive, got %gx%g", l.Width, l.Height)
	}
	if l.IsTreemap() && len(l.Words) > 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "treemap layout must not contain words")
	}
	if l.IsWordCloud() && len(l.Nodes) > 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "wordcloud layout must not contain treemap nodes")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
