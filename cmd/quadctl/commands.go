package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/quadboard/internal/parser"
	"github.com/spf13/cobra"
)

func newOutlineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "outline [file]",
		Short: "Structure free text into an outline",
		Long:  "Read free text from a file (or stdin) and print the structured markdown outline.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := render(text, renderOptions{mode: modeOutline})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newSegmentCommand() *cobra.Command {
	opts := renderOptions{mode: modeSegment}
	cmd := &cobra.Command{
		Use:   "segment [file]",
		Short: "Split text into bounded chunks",
		Long:  "Read text from a file (or stdin) and print its chunks as a JSON array or JSON Lines.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := render(text, opts)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	opts.addSegmentFlags(cmd)
	return cmd
}

func newExtractCommand() *cobra.Command {
	var noPdftotext bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the plain text extracted from a document",
		Long:  "Convert a .txt, .md, .csv, .html, .pdf or .docx file into the plain text used for uploads.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parser.ForFile(args[0], parser.Options{PDFFallbackPdftotext: !noPdftotext})
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := p.Extract(bytes.NewReader(data), args[0])
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text+"\n")
			return err
		},
	}
	cmd.Flags().BoolVar(&noPdftotext, "no-pdftotext", false, "do not fall back to the pdftotext binary for PDFs")
	return cmd
}
