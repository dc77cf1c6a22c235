package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cellfmt "github.com/TsubasaBE/go-cellfmt"
	"github.com/TsubasaBE/go-cellfmt/export"
	"github.com/TsubasaBE/go-cellfmt/mcptool"
)

// ── format ────────────────────────────────────────────────────────────────────

var (
	formatString string
	jsonOutput   bool
	serialDates  bool
)

func newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format -f FORMAT [values...]",
		Short: "Format values and print the display text and style",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFormat,
	}
	cmd.Flags().StringVarP(&formatString, "format", "f", "", "Format string")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print one JSON result per value")
	cmd.Flags().BoolVar(&serialDates, "serial", false, "Treat numeric values as spreadsheet date serials")
	return cmd
}

func runFormat(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	h := engine.NewValueFormatter(formatString)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for _, arg := range args {
		res := h.Result(argValue(arg))
		if jsonOutput {
			if err := enc.Encode(res); err != nil {
				return err
			}
			continue
		}
		if res.Style != nil {
			fmt.Fprintf(out, "%s\t%s\n", res.Value, res.Style.CSS())
		} else {
			fmt.Fprintln(out, res.Value)
		}
	}
	return nil
}

func argValue(arg string) any {
	if !serialDates {
		return arg
	}
	n, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return arg
	}
	t, err := cellfmt.SerialToTime(n, false)
	if err != nil {
		return arg
	}
	return t
}

// ── parse ─────────────────────────────────────────────────────────────────────

var parseOutput string

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FORMAT",
		Short: "Print the parsed structure of a format string",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().StringVarP(&parseOutput, "output", "o", "json", "Output format: json or yaml")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	parsed := engine.Compile(args[0]).Parsed()
	out := cmd.OutOrStdout()
	switch parseOutput {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(parsed)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(parsed); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid output format: %s (must be json or yaml)", parseOutput)
	}
}

// ── render ────────────────────────────────────────────────────────────────────

var (
	profilePath string
	inputPath   string
	encodingArg string
	xmlRows     string
	xlsxPath    string
	workers     int
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render --profile PROFILE --in DATA",
		Short: "Apply a column profile to CSV or XML rows",
		Long: `render formats every row of a CSV file (or the XML elements selected by
--xml-rows) with the formats of a column profile and writes JSON lines to
stdout, or a styled workbook with --xlsx.`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "Column profile (YAML or JSON)")
	cmd.Flags().StringVar(&inputPath, "in", "", "Input data file")
	cmd.Flags().StringVar(&encodingArg, "encoding", "", "CSV byte encoding (default from config)")
	cmd.Flags().StringVar(&xmlRows, "xml-rows", "", "Read XML input; XPath selecting the row elements")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write an XLSX workbook to this path")
	cmd.Flags().IntVar(&workers, "workers", 0, "Formatting goroutines (default from config)")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	profile, err := export.LoadProfile(profilePath)
	if err != nil {
		return err
	}
	if profile.Sheet == "" {
		profile.Sheet = cfg.Export.Sheet
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return err
	}

	n := workers
	if n <= 0 {
		n = cfg.Export.Workers
	}
	rows, err := profile.Apply(cmd.Context(), records, n)
	if err != nil {
		return fmt.Errorf("apply profile: %w", err)
	}

	if xlsxPath == "" {
		return export.WriteJSONLines(cmd.OutOrStdout(), rows)
	}
	out, err := os.Create(xlsxPath)
	if err != nil {
		return fmt.Errorf("create xlsx: %w", err)
	}
	if err := export.WriteXLSX(out, profile, rows); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func readRecords(r io.Reader) ([]export.Record, error) {
	if xmlRows != "" {
		return export.ReadXML(r, xmlRows)
	}
	enc := encodingArg
	if enc == "" {
		enc = cfg.Export.Encoding
	}
	return export.ReadCSV(r, enc)
}

// ── serve ─────────────────────────────────────────────────────────────────────

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the format engine as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.ServeStdio(mcptool.NewServer(engine, cellfmt.Version))
		},
	}
}
