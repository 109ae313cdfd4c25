package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/born-ml/ndarray/backend/cpu"
)

const version = "v0.1.0-dev"

type rootOptions struct {
	verbose bool
	trace   bool

	shutdown func(context.Context) error
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ndarray",
		Short:         "N-dimensional array engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(level)

			if opts.trace {
				shutdown, err := initTracer()
				if err != nil {
					return err
				}
				opts.shutdown = shutdown
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.shutdown != nil {
				return opts.shutdown(context.Background())
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&opts.trace, "trace", false, "Print OpenTelemetry spans to stdout")

	root.AddCommand(
		newVersionCmd(),
		newDTypesCmd(),
		newBroadcastCmd(),
		newReduceCmd(opts),
	)
	return root
}

// newContext creates the CPU context commands run operations on.
func newContext(opts *rootOptions) *cpu.Context {
	options := []cpu.Option{cpu.WithLogger(log.Logger)}
	if opts.trace {
		options = append(options, cpu.WithTracer(otel.Tracer("ndarray")))
	}
	return cpu.New(options...)
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("ndarray"),
		)),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ndarray %s\n", version)
		},
	}
}
