package cpu

import (
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// engineFactory specializes a DefaultEngine for its data type.
type engineFactory func(*DefaultEngine) tensor.Engine

// factories maps every data type to its engine. Float16 has no native
// arithmetic and runs on the DefaultEngine.
var factories = [...]engineFactory{
	tensor.Bool:    newBoolEngine,
	tensor.Uint8:   newIntEngine[uint8],
	tensor.Int16:   newIntEngine[int16],
	tensor.Uint16:  newIntEngine[uint16],
	tensor.Int32:   newIntEngine[int32],
	tensor.Uint32:  newIntEngine[uint32],
	tensor.Int64:   newIntEngine[int64],
	tensor.Uint64:  newIntEngine[uint64],
	tensor.Float16: func(base *DefaultEngine) tensor.Engine { return base },
	tensor.Float32: newFloatEngine[float32],
	tensor.Float64: newFloatEngine[float64],
}

// Compile-time checks.
var (
	_ tensor.Engine = (*DefaultEngine)(nil)
	_ tensor.Engine = (*typedEngine[float32])(nil)
	_ tensor.Engine = (*boolEngine)(nil)
)

// buildEngines creates the lookup table indexed by data type.
func buildEngines(al *allocator, parallelism int) []tensor.Engine {
	par := parallel.New(parallelism)
	dtypes := tensor.DataTypes()
	table := make([]tensor.Engine, len(dtypes))
	for _, dt := range dtypes {
		table[dt] = factories[dt](newDefaultEngine(dt, al, par))
	}
	return table
}
