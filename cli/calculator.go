package cli

import (
	"context"

	"github.com/tsinghua-fib-lab/jptax-sim/taxcalc"
)

// calculator 本地计算与远程RPC的共同接口
type calculator interface {
	Calculate(ctx context.Context, in taxcalc.CalculationInput) (taxcalc.CalculationResult, error)
	CalculateBatch(ctx context.Context, ins []taxcalc.CalculationInput) ([]taxcalc.CalculationResult, error)
}

var (
	_ calculator = localCalculator{}
	_ calculator = &taxcalc.Client{}
)

type localCalculator struct{}

func (localCalculator) Calculate(_ context.Context, in taxcalc.CalculationInput) (taxcalc.CalculationResult, error) {
	return taxcalc.CalculateInput(in)
}

func (localCalculator) CalculateBatch(_ context.Context, ins []taxcalc.CalculationInput) ([]taxcalc.CalculationResult, error) {
	return taxcalc.CalculateBatch(ins)
}
