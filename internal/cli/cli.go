// Package cli implements the netir command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/netir/internal/graphfile"
	"github.com/born-ml/netir/internal/serialize"
)

// Version is the CLI version string.
const Version = "v0.1.0-dev"

// RootOptions holds flags shared by every command.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the netir root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "netir",
		Short:         "Serialize computation graphs to NetIR topology and binary files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(opts.Verbose)
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(NewSerializeCommand(opts))
	cmd.AddCommand(NewVersionCommand())
	return cmd
}

// SerializeOptions holds flags for the serialize command.
type SerializeOptions struct {
	*RootOptions
	Input   string
	XMLPath string
	BinPath string
}

// NewSerializeCommand creates the serialize command.
func NewSerializeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SerializeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serialize",
		Short: "Serialize a YAML graph description to NetIR",
		Long: `Serialize a YAML graph description to a NetIR topology document
and a companion binary blob of constant payloads.

Example:
  netir serialize --input model.yaml --xml model.xml
  netir serialize --input model.yaml --xml model.xml --bin weights.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSerialize(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "path to the YAML graph description (required)")
	cmd.Flags().StringVar(&opts.XMLPath, "xml", "", "topology output path, must end with .xml (required)")
	cmd.Flags().StringVar(&opts.BinPath, "bin", "", "binary output path (defaults to the xml path with a .bin extension)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("xml")

	return cmd
}

func runSerialize(opts *SerializeOptions) error {
	slog.Info("loading graph description", "path", opts.Input)
	g, err := graphfile.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	s, err := serialize.New(opts.XMLPath, opts.BinPath, serialize.IRv10, nil)
	if err != nil {
		return fmt.Errorf("invalid output configuration: %w", err)
	}

	slog.Info("serializing", "graph", g.Name(), "xml", s.XMLPath(), "bin", s.BinPath())
	if _, err := s.Run(g); err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	slog.Info("done", "xml", s.XMLPath(), "bin", s.BinPath())
	return nil
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("netir %s\n", Version)
		},
	}
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
