package cli

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/jptax-sim/taxcalc"
)

// amount 金额，整数值按整数输出，避免yaml.v2的1.8e+06写法
type amount float64

func (a amount) MarshalYAML() (interface{}, error) {
	f := float64(a)
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), nil
	}
	return f, nil
}

type resultView struct {
	Income              amount `yaml:"income"`
	Deductions          amount `yaml:"deductions"`
	Dependents          int    `yaml:"dependents"`
	TaxableIncome       amount `yaml:"taxableIncome"`
	NationalTax         amount `yaml:"nationalTax"`
	Surtax              amount `yaml:"surtax"`
	LocalTax            amount `yaml:"localTax"`
	HealthInsurance     amount `yaml:"healthInsurance"`
	Pension             amount `yaml:"pension"`
	EmploymentInsurance amount `yaml:"employmentInsurance"`
	TotalDeductions     amount `yaml:"totalDeductions"`
	NetIncome           amount `yaml:"netIncome"`
}

type summaryView struct {
	Count           int    `yaml:"count"`
	Income          amount `yaml:"income"`
	TotalDeductions amount `yaml:"totalDeductions"`
	NetIncome       amount `yaml:"netIncome"`
}

type batchView struct {
	Results []resultView `yaml:"results"`
	Summary summaryView  `yaml:"summary"`
}

func newResultView(r taxcalc.CalculationResult) resultView {
	return resultView{
		Income:              amount(r.Income),
		Deductions:          amount(r.Deductions),
		Dependents:          r.Dependents,
		TaxableIncome:       amount(r.TaxableIncome),
		NationalTax:         amount(r.NationalTax),
		Surtax:              amount(r.Surtax),
		LocalTax:            amount(r.LocalTax),
		HealthInsurance:     amount(r.HealthInsurance),
		Pension:             amount(r.Pension),
		EmploymentInsurance: amount(r.EmploymentInsurance),
		TotalDeductions:     amount(r.TotalDeductions),
		NetIncome:           amount(r.NetIncome),
	}
}

func newBatchView(results []taxcalc.CalculationResult) batchView {
	s := taxcalc.Summarize(results)
	return batchView{
		Results: lo.Map(results, func(r taxcalc.CalculationResult, _ int) resultView {
			return newResultView(r)
		}),
		Summary: summaryView{
			Count:           s.Count,
			Income:          amount(s.Income),
			TotalDeductions: amount(s.TotalDeductions),
			NetIncome:       amount(s.NetIncome),
		},
	}
}
