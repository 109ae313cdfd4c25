package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/born-ml/ndarray/backend/cpu"
	"github.com/born-ml/ndarray/internal/arrowio"
	"github.com/born-ml/ndarray/tensor"
)

// parseDims parses a comma separated dimension list. The empty string is the
// 0-dimensional shape.
func parseDims(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "()" {
		return []int{}, nil
	}
	s = strings.Trim(s, "()")
	parts := strings.Split(s, ",")
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid dimension %q", p)
		}
		if d < 0 {
			return nil, errors.Errorf("negative dimension %d", d)
		}
		dims = append(dims, d)
	}
	return dims, nil
}

func newDTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dtypes",
		Short: "List supported data types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data [][]string
			for _, dt := range tensor.DataTypes() {
				kind := "bool"
				switch {
				case dt.IsFloat():
					kind = "float"
				case dt.IsSigned():
					kind = "signed"
				case dt.IsInteger():
					kind = "unsigned"
				}
				data = append(data, []string{dt.String(), strconv.Itoa(dt.Size()), kind})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"NAME", "SIZE", "KIND"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}

func newBroadcastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "broadcast DIMS DIMS...",
		Short: "Print the broadcast shape of two or more shapes",
		Example: `  ndarray broadcast 3,1 4
  ndarray broadcast 2,1,3 5,1 1`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shapes := make([]tensor.Shape, len(args))
			for i, arg := range args {
				dims, err := parseDims(arg)
				if err != nil {
					return err
				}
				shapes[i] = tensor.NewShape(dims...)
			}
			out, err := tensor.BroadcastMany(shapes...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out[0].String())
			return nil
		},
	}
}

type reduceFunc func(*cpu.Context, *tensor.Array, tensor.ReduceOptions) (*tensor.Array, error)

var reductions = map[string]reduceFunc{
	"sum":    (*cpu.Context).Sum,
	"prod":   (*cpu.Context).Prod,
	"mean":   (*cpu.Context).Mean,
	"min":    (*cpu.Context).AMin,
	"max":    (*cpu.Context).AMax,
	"argmin": (*cpu.Context).ArgMin,
	"argmax": (*cpu.Context).ArgMax,
	"var":    (*cpu.Context).Var,
	"std":    (*cpu.Context).Std,
}

type reduceOptions struct {
	op       string
	shape    string
	dtype    string
	axis     int
	keepDims bool
	ddof     int
	arrow    bool
}

func newReduceCmd(root *rootOptions) *cobra.Command {
	opts := &reduceOptions{}
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Reduce an arange array of the given shape",
		Example: `  ndarray reduce --op sum --shape 2,3 --axis 1
  ndarray reduce --op var --shape 4,5 --dtype float32 --ddof 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.op, "op", "sum", "Reduction: sum, prod, mean, min, max, argmin, argmax, var, std")
	cmd.Flags().StringVar(&opts.shape, "shape", "2,3", "Comma separated input dimensions")
	cmd.Flags().StringVar(&opts.dtype, "dtype", "float64", "Input data type")
	cmd.Flags().IntVar(&opts.axis, "axis", 0, "Axis to reduce; all axes when unset")
	cmd.Flags().BoolVar(&opts.keepDims, "keepdims", false, "Keep reduced axes with size one")
	cmd.Flags().IntVar(&opts.ddof, "ddof", 0, "Delta degrees of freedom for var and std")
	cmd.Flags().BoolVar(&opts.arrow, "arrow", false, "Print the result as an Arrow array")
	return cmd
}

func runReduce(cmd *cobra.Command, root *rootOptions, opts *reduceOptions) error {
	fn, ok := reductions[opts.op]
	if !ok {
		return errors.Errorf("unknown reduction %q", opts.op)
	}
	dims, err := parseDims(opts.shape)
	if err != nil {
		return err
	}
	dtype, err := tensor.ParseDataType(opts.dtype)
	if err != nil {
		return err
	}

	ctx := newContext(root)
	input, err := arangeOf(ctx, dtype, dims)
	if err != nil {
		return err
	}
	defer input.Release()

	ro := tensor.ReduceOptions{KeepDims: opts.keepDims, DDof: opts.ddof}
	if cmd.Flags().Changed("axis") {
		ro.Axis = tensor.Axis(opts.axis)
	}
	out, err := fn(ctx, input, ro)
	if err != nil {
		return err
	}
	defer out.Release()

	if opts.arrow {
		arr, err := arrowio.ToArrow(out, memory.DefaultAllocator)
		if err != nil {
			return err
		}
		defer arr.Release()
		fmt.Fprintln(cmd.OutOrStdout(), arr.String())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}

// arangeOf returns 0, 1, ... laid out in dims and converted to dtype.
func arangeOf(ctx *cpu.Context, dtype tensor.DataType, dims []int) (*tensor.Array, error) {
	n := 1
	for _, d := range dims {
		n *= d
	}
	flat := tensor.Arange[float64](n)
	defer flat.Release()

	shaped, err := flat.Reshape(dims...)
	if err != nil {
		return nil, err
	}
	defer shaped.Release()
	if dtype == tensor.Float64 {
		return ctx.Copy(shaped)
	}
	out, err := ctx.Cast(shaped, dtype)
	if err != nil {
		return nil, errors.Wrap(err, "convert input")
	}
	return out, nil
}
