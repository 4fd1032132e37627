package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dgallion1/docwiki/internal/doctree"
	"github.com/dgallion1/docwiki/internal/parser"
	"github.com/dgallion1/docwiki/internal/wikitext"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	dialect     string
	dialectFile string
	out         string
	title       string
	emitJSON    bool
	pdftotext   bool
	verbose     bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a document as wiki markup",
		Long: "Render a document as wiki markup. FILE may be JSON, Markdown, HTML, " +
			"text, CSV, DOCX or PDF; \"-\" reads a JSON document from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dialect, "dialect", "", "dialect name (default: standard, or the dialect file's)")
	f.StringVar(&opts.dialectFile, "dialect-file", "", "YAML dialect override file")
	f.StringVarP(&opts.out, "out", "o", "", "write output to this file instead of stdout")
	f.StringVar(&opts.title, "title", "", "override the document title")
	f.BoolVar(&opts.emitJSON, "emit-json", false, "print the parsed document tree as JSON instead of rendering")
	f.BoolVar(&opts.pdftotext, "pdftotext", true, "fall back to pdftotext for PDFs")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print a summary to stderr")
	return cmd
}

func runRender(cmd *cobra.Command, file string, opts renderOptions) error {
	reg, err := loadRegistry(opts.dialectFile)
	if err != nil {
		return err
	}
	d, err := reg.Get(opts.dialect)
	if err != nil {
		return err
	}

	doc, err := readDocument(cmd.InOrStdin(), file, parser.Options{FallbackPdftotext: opts.pdftotext})
	if err != nil {
		return err
	}
	if opts.title != "" {
		doc.Title = opts.title
	}

	var out []byte
	start := time.Now()
	if opts.emitJSON {
		out, err = json.MarshalIndent(doc.Body, "", "  ")
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
	} else {
		text, err := wikitext.New(d).Serialize(doc.Body)
		if err != nil {
			return fmt.Errorf("render %s: %w", file, err)
		}
		out = []byte(text)
	}
	elapsed := time.Since(start)

	if err := writeOutput(cmd.OutOrStdout(), opts.out, out); err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %q, %d blocks, dialect %s, %s in %s\n",
			file, doc.Title, doc.Body.ChildCount(), d.Name, humanize.Bytes(uint64(len(out))), elapsed.Round(time.Microsecond))
	}
	return nil
}

func readDocument(stdin io.Reader, file string, opts parser.Options) (*doctree.Document, error) {
	if file == "-" {
		return (&parser.JSONParser{}).Parse(stdin, "stdin.json")
	}
	p, err := parser.ForFile(file, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	doc, err := p.Parse(f, file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return doc, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, string(data))
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
