package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mkorchagin/docforge/internal/compiler"
	"github.com/mkorchagin/docforge/internal/renderer"
)

// RenderCommand compiles a template document against a data file and writes
// the result, as HTML or as a PDF when an output path ends in .pdf.
type RenderCommand struct {
	TemplatePath string
	DataPath     string
	OutputPath   string
	PageSize     string
	Orientation  string
}

func NewRenderCommand() *RenderCommand {
	return &RenderCommand{}
}

func (cmd *RenderCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)

	fs.StringVar(&cmd.TemplatePath, "template", "", "Path to the template JSON file (required)")
	fs.StringVar(&cmd.DataPath, "data", "", "Path to the data JSON file")
	fs.StringVar(&cmd.OutputPath, "out", "", "Output path; .pdf renders through Chrome, anything else writes HTML (default: stdout)")
	fs.StringVar(&cmd.PageSize, "page-size", renderer.PageSizeA4, "Page size for PDF output: A4, Letter or Legal")
	fs.StringVar(&cmd.Orientation, "orientation", renderer.OrientationPortrait, "Page orientation for PDF output: portrait or landscape")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s render [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Compile a template document against a data file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s render -template invoice.json -data customer.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s render -template invoice.json -data customer.json -out invoice.pdf\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.TemplatePath == "" {
		fs.Usage()
		return fmt.Errorf("template is required")
	}

	return nil
}

func (cmd *RenderCommand) Run() error {
	template, err := readJSONFile(cmd.TemplatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	data := map[string]any{}
	if cmd.DataPath != "" {
		if data, err = readJSONFile(cmd.DataPath); err != nil {
			return fmt.Errorf("failed to read data: %w", err)
		}
	}

	html := compiler.New().Compile(template, data)

	if cmd.OutputPath == "" {
		fmt.Println(html)
		return nil
	}

	if len(cmd.OutputPath) > 4 && cmd.OutputPath[len(cmd.OutputPath)-4:] == ".pdf" {
		return cmd.renderPDF(html)
	}

	if err := os.WriteFile(cmd.OutputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Wrote %s\n", cmd.OutputPath)
	return nil
}

func (cmd *RenderCommand) renderPDF(html string) error {
	ctx := context.Background()
	engine, err := renderer.NewChromeEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to start renderer: %w", err)
	}
	defer engine.Close()

	pdf, err := engine.RenderPDF(ctx, html, renderer.Options{
		PageSize:    cmd.PageSize,
		Orientation: cmd.Orientation,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(cmd.OutputPath, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", cmd.OutputPath, len(pdf))
	return nil
}

func readJSONFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return doc, nil
}
