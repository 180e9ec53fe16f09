package sink

import (
	"slices"
	"strings"

	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/layout"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// ParseFormats splits a comma-separated list, lowercases it and drops
// duplicates. Unknown names fail with INVALID_FORMAT.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	return out, nil
}

// ValidateFormat returns an INVALID_FORMAT error for unknown formats.
func ValidateFormat(f string) error {
	if slices.Contains(Formats, f) {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", f, strings.Join(Formats, ", "))
}

// Options bundles the per-format options used by Render.
type Options struct {
	SVG   []SVGOption
	PNG   []PNGOption
	Title string
}

// Render produces each requested format for l.
func Render(l layout.Layout, formats []string, opts Options) (map[string][]byte, error) {
	svgOpts := opts.SVG
	if opts.Title != "" {
		svgOpts = append([]SVGOption{WithTitle(opts.Title)}, svgOpts...)
	}

	out := make(map[string][]byte, len(formats))
	for _, f := range formats {
		var (
			data []byte
			err  error
		)
		switch f {
		case FormatSVG:
			data = RenderSVG(l, svgOpts...)
		case FormatPNG:
			pngOpts := append([]PNGOption{WithPNGSVGOptions(svgOpts...)}, opts.PNG...)
			data, err = RenderPNG(l, pngOpts...)
		case FormatJSON:
			data, err = RenderJSON(l)
		default:
			err = ValidateFormat(f)
		}
		if err != nil {
			return nil, err
		}
		out[f] = data
	}
	return out, nil
}
