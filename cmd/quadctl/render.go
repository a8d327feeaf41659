package main

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/quadboard/internal/chunker"
	"github.com/dgallion1/quadboard/internal/export"
	"github.com/dgallion1/quadboard/internal/outline"
	"github.com/spf13/cobra"
)

const (
	modeOutline = "outline"
	modeSegment = "segment"
)

// renderOptions selects the transform and its output encoding.
type renderOptions struct {
	mode     string
	maxChars int
	format   string
}

func (o *renderOptions) validate() error {
	switch o.mode {
	case modeOutline:
		return nil
	case modeSegment:
	default:
		return fmt.Errorf("mode must be %s or %s, got %q", modeOutline, modeSegment, o.mode)
	}
	f, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if f != export.FormatJSON && f != export.FormatJSONL {
		return fmt.Errorf("format must be json or jsonl, got %q", o.format)
	}
	if o.maxChars <= 0 {
		return fmt.Errorf("%w: %d", chunker.ErrInvalidChunkSize, o.maxChars)
	}
	return nil
}

func (o *renderOptions) addSegmentFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.maxChars, "max-chars", chunker.DefaultMaxChunkChars, "maximum characters per chunk")
	cmd.Flags().StringVar(&o.format, "format", string(export.FormatJSON), "chunk output format: json or jsonl")
}

// render runs the selected transform over text.
func render(text string, o renderOptions) ([]byte, error) {
	var buf bytes.Buffer
	switch o.mode {
	case modeOutline:
		if err := export.Markdown(&buf, outline.Structure(text)); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	case modeSegment:
		chunks, err := chunker.Segment(text, o.maxChars)
		if err != nil {
			return nil, err
		}
		f, err := export.ParseFormat(o.format)
		if err != nil {
			return nil, err
		}
		if err := export.Chunks(&buf, chunks, f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", o.mode)
	}
	return buf.Bytes(), nil
}
