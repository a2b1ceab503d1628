package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"github.com/Zachacious/go-routedoc/internal/analyzer"
	"github.com/Zachacious/go-routedoc/internal/assembler"
	"github.com/Zachacious/go-routedoc/internal/codegen"
	"github.com/Zachacious/go-routedoc/internal/config"
	"github.com/Zachacious/go-routedoc/internal/model"
	"github.com/Zachacious/go-routedoc/routedoc"
)

// These variables are set at build time by ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	verbose bool
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "routedoc",
		Short: "routedoc generates OpenAPI documents from annotated Go handlers.",
		Long: `routedoc reads //routedoc: directives and handler signatures from a Go
package and writes a Go file that builds the package's OpenAPI v3 document at
run time. The preview command builds the same document statically.
Configuration is read from a .routedoc.yaml file in the package directory.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newPreviewCmd(opts),
		newRoutesCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// analyze loads the configuration and analyzes the package at projectPath.
func analyze(ctx context.Context, out io.Writer, opts *options, projectPath string) (*config.Config, *model.APIModel, error) {
	fmt.Fprintf(out, "Starting analysis of package at: %s\n", projectPath)
	cfg, err := config.Load(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", config.FileName, err)
	}
	a, err := analyzer.New(projectPath, cfg, opts.logger())
	if err != nil {
		return nil, nil, fmt.Errorf("initializing analyzer: %w", err)
	}
	apiModel, err := a.Analyze(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("analysis: %w", err)
	}
	fmt.Fprintf(out, "Analysis complete. Found %d handlers.\n", len(apiModel.Handlers))
	return cfg, apiModel, nil
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func newGenerateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [path]",
		Short: "Write the generated documentation file into the package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, apiModel, err := analyze(cmd.Context(), out, opts, pathArg(args))
			if err != nil {
				return err
			}
			written, err := codegen.Write(apiModel, cfg)
			if err != nil {
				return fmt.Errorf("generating code: %w", err)
			}
			fmt.Fprintf(out, "Successfully generated %s\n", written)
			return nil
		},
	}
}

func newPreviewCmd(opts *options) *cobra.Command {
	var (
		outputPath string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "preview [path]",
		Short: "Build the OpenAPI document statically and write it to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var marshal func(*openapi3.T) ([]byte, error)
			switch strings.ToLower(format) {
			case "yaml", "yml":
				marshal = routedoc.MarshalYAML
			case "json":
				marshal = func(spec *openapi3.T) ([]byte, error) {
					return json.MarshalIndent(spec, "", "  ")
				}
			default:
				return fmt.Errorf("unknown format %q, expected yaml or json", format)
			}

			out := cmd.OutOrStdout()
			cfg, apiModel, err := analyze(cmd.Context(), out, opts, pathArg(args))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Assembling specification...")
			spec, err := assembler.BuildSpec(apiModel, cfg, opts.logger())
			if err != nil {
				return fmt.Errorf("assembling specification: %w", err)
			}
			data, err := marshal(spec)
			if err != nil {
				return fmt.Errorf("marshaling specification: %w", err)
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return fmt.Errorf("writing output file: %w", err)
			}
			fmt.Fprintf(out, "Successfully generated OpenAPI spec at: %s\n", outputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "openapi.yaml", "Output file for the OpenAPI specification")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format, yaml or json")
	return cmd
}

func newRoutesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "routes [path]",
		Short: "List the annotated handlers and how their directives were parsed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, apiModel, err := analyze(cmd.Context(), io.Discard, opts, pathArg(args))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HANDLER\tMETHOD\tPATH\tPARSER\tDIRECTIVE")
			for _, h := range apiModel.Handlers {
				path := h.Route.OpenAPIPath()
				if h.OpenAPI.Skip {
					path += " (skipped)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s(%s)\n",
					h.Func, h.Route.Method, path, h.Parser, h.Attr.Name, h.Attr.Args)
			}
			return w.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of routedoc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "routedoc version %s\n", version)
			fmt.Fprintf(out, "commit: %s\n", commit)
			fmt.Fprintf(out, "built at: %s\n", date)
		},
	}
}
