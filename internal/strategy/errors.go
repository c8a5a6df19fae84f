package strategy

import "errors"

var (
	// ErrUnsupportedStrategy is returned when a strategy name is not recognized
	ErrUnsupportedStrategy = errors.New("unsupported gap strategy")

	// ErrNoUsableStrategies is returned when no strategy in the order could be built
	ErrNoUsableStrategies = errors.New("no usable gap strategies")
)
