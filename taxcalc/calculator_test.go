package taxcalc

import (
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func mustCalculate(t *testing.T, income, deductions float64, dependents int) CalculationResult {
	t.Helper()
	r, err := Calculate(income, deductions, dependents)
	require.NoError(t, err)
	return r
}

func TestCalculateLowIncome(t *testing.T) {
	r := mustCalculate(t, 1800000, 0, 0)
	assert.Equal(t, 1800000.0, r.TaxableIncome)
	assert.Equal(t, 90000.0, r.NationalTax) // 5%
	assert.Equal(t, 1890.0, r.Surtax)
	assert.Equal(t, 180000.0, r.LocalTax)
	assert.Equal(t, 90000.0, r.HealthInsurance)
	assert.Equal(t, 164700.0, r.Pension)
	assert.Equal(t, 9000.0, r.EmploymentInsurance)
	assert.Equal(t, 535590.0, r.TotalDeductions)
	assert.Equal(t, 1264410.0, r.NetIncome)
}

func TestCalculateZeroIncome(t *testing.T) {
	r := mustCalculate(t, 0, 0, 0)
	assert.Equal(t, CalculationResult{}, r)
}

func TestCalculateDeductions(t *testing.T) {
	r := mustCalculate(t, 5000000, 1000000, 0)
	assert.Equal(t, 4000000.0, r.TaxableIncome)
	assert.Equal(t, 372500.0, r.NationalTax)
	// 社会保险不受扣除影响
	assert.Equal(t, 250000.0, r.HealthInsurance)
	assert.Equal(t, 457500.0, r.Pension)
	assert.Equal(t, 25000.0, r.EmploymentInsurance)
	assert.Equal(t, 1000000.0, r.Deductions)
}

func TestCalculateDependents(t *testing.T) {
	r := mustCalculate(t, 5000000, 0, 2)
	assert.Equal(t, 4240000.0, r.TaxableIncome) // 5M - 380K*2
	assert.Equal(t, 420500.0, r.NationalTax)
	assert.Equal(t, 2, r.Dependents)
	assert.Equal(t, 1585831.0, r.TotalDeductions)
	assert.Equal(t, 3414169.0, r.NetIncome)
}

func TestCalculateTaxableIncomeFloor(t *testing.T) {
	r := mustCalculate(t, 1000000, 800000, 3)
	assert.Equal(t, 0.0, r.TaxableIncome)
	assert.Equal(t, 0.0, r.NationalTax)
	assert.Equal(t, 0.0, r.LocalTax)
	assert.Equal(t, 50000.0, r.HealthInsurance)
}

func TestCalculateTopBracket(t *testing.T) {
	r := mustCalculate(t, 50000000, 0, 0)
	assert.Equal(t, 17704000.0, r.NationalTax)
	assert.Equal(t, 371784.0, r.Surtax)
	assert.Equal(t, 30400784.0, r.TotalDeductions)
	assert.Equal(t, 19599216.0, r.NetIncome)
}

func TestBracketBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		taxable  float64
		wantRate float64
	}{
		{"<=1950000", 1950000, 0.05},
		{">1950000", 1950001, 0.10},
		{"<=3300000", 3300000, 0.10},
		{">3300000", 3300001, 0.20},
		{"<=6950000", 6950000, 0.20},
		{">6950000", 6950001, 0.23},
		{"<=9000000", 9000000, 0.23},
		{">9000000", 9000001, 0.33},
		{"<=18000000", 18000000, 0.33},
		{">18000000", 18000001, 0.40},
		{"<=40000000", 40000000, 0.40},
		{">40000000", 40000001, 0.45},
		{"zero", 0, 0.05},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := findBracket(tc.taxable, defaultBrackets)
			require.NoError(t, err)
			assert.Equal(t, tc.wantRate, b.Rate)
		})
	}
}

func TestBracketLookupFailure(t *testing.T) {
	truncated := defaultBrackets[:len(defaultBrackets)-1]
	_, err := calculateWith(truncated, 50000000, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBracketLookup)

	var lookupErr *BracketLookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, 50000000.0, lookupErr.TaxableIncome)

	// 落在截断后的最高档内仍可计算
	_, err = calculateWith(truncated, 40000000, 0, 0)
	assert.NoError(t, err)
}

func TestBracketsReturnsCopy(t *testing.T) {
	bs := Brackets()
	require.Len(t, bs, 7)
	bs[0].Rate = 0.99
	assert.Equal(t, 0.05, Brackets()[0].Rate)
	assert.Equal(t, 90000.0, mustCalculate(t, 1800000, 0, 0).NationalTax)
}

func TestTotalDeductionsRoundedOnce(t *testing.T) {
	r := mustCalculate(t, 1000002, 0, 0)
	sumOfRounded := r.NationalTax + r.Surtax + r.LocalTax + r.HealthInsurance + r.Pension + r.EmploymentInsurance
	assert.Equal(t, 297550.0, sumOfRounded)
	assert.Equal(t, 297551.0, r.TotalDeductions)
	assert.Equal(t, 702451.0, r.NetIncome)
}

func TestNegativeInputsFlowThrough(t *testing.T) {
	r := mustCalculate(t, -1000000, 0, 0)
	assert.Equal(t, 0.0, r.TaxableIncome)
	assert.Equal(t, -50000.0, r.HealthInsurance)
	assert.Equal(t, -91500.0, r.Pension)
	assert.Equal(t, -5000.0, r.EmploymentInsurance)
	assert.Equal(t, -146500.0, r.TotalDeductions)
	assert.Equal(t, -853500.0, r.NetIncome)

	// 负扣除额与负扶养人数会增加应税所得
	r = mustCalculate(t, 1000000, -100000, -1)
	assert.Equal(t, 1480000.0, r.TaxableIncome)
}

func TestRoundHalfUp(t *testing.T) {
	cases := map[float64]float64{
		2.5:                 3,
		-2.5:                -2,
		2.4999:              2,
		-0.5:                0,
		0.49999999999999994: 0,
		1890.0021:           1890,
		-146500.5:           -146500,
	}
	for in, want := range cases {
		assert.Equal(t, want, roundHalfUp(in), "roundHalfUp(%v)", in)
	}
}

func TestCalculateProperties(t *testing.T) {
	gen := rand.New(rand.NewSource(20240101))
	for i := 0; i < 2000; i++ {
		income := float64(gen.Int63n(100000000))
		deductions := float64(gen.Int63n(5000000))
		dependents := gen.Intn(6)

		r := mustCalculate(t, income, 0, 0)
		assert.Equal(t, income, r.TaxableIncome)

		r = mustCalculate(t, income, deductions, dependents)
		assert.Equal(t, max(income-deductions-380000*float64(dependents), 0), r.TaxableIncome)
		assert.Equal(t, income-r.TotalDeductions, r.NetIncome)
		assert.GreaterOrEqual(t, r.NationalTax, 0.0)

		again := mustCalculate(t, income, deductions, dependents)
		assert.Equal(t, r, again)
	}
}

func TestNationalTaxMonotonic(t *testing.T) {
	gen := rand.New(rand.NewSource(7))
	incomes := make([]float64, 0, 5000)
	for i := 0; i < 5000; i++ {
		incomes = append(incomes, float64(gen.Int63n(60000000)))
	}
	// 各档位上下边界
	for _, b := range defaultBrackets[:len(defaultBrackets)-1] {
		incomes = append(incomes, b.Upper-1, b.Upper, b.Upper+1)
	}
	sort.Float64s(incomes)

	prev := -1.0
	for _, income := range incomes {
		r := mustCalculate(t, income, 0, 0)
		require.GreaterOrEqual(t, r.NationalTax, prev, "income %v", income)
		prev = r.NationalTax
	}
}

func TestCalculateConcurrent(t *testing.T) {
	want := mustCalculate(t, 7500000, 300000, 1)
	var wg sync.WaitGroup
	results := make([]CalculationResult, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Calculate(7500000, 300000, 1)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestCalculateBatch(t *testing.T) {
	ins := []CalculationInput{
		{Income: 1800000},
		{Income: 5000000, Deductions: 1000000},
		{Income: 5000000, Dependents: 2},
	}
	results, err := CalculateBatch(ins)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 90000.0, results[0].NationalTax)
	assert.Equal(t, 4000000.0, results[1].TaxableIncome)
	assert.Equal(t, 4240000.0, results[2].TaxableIncome)

	s := Summarize(results)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 11800000.0, s.Income)
	assert.Equal(t, results[0].TotalDeductions+results[1].TotalDeductions+results[2].TotalDeductions, s.TotalDeductions)
	assert.Equal(t, s.Income-s.TotalDeductions, s.NetIncome)

	empty, err := CalculateBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, Summary{}, Summarize(empty))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, CalculationInput{Income: 1e308, Deductions: -1e308}.IsFinite())
	assert.False(t, CalculationInput{Income: math.Inf(1)}.IsFinite())
	assert.False(t, CalculationInput{Income: 1, Deductions: math.NaN()}.IsFinite())

	assert.True(t, mustCalculate(t, 5000000, 0, 2).IsFinite())
	assert.False(t, mustCalculate(t, 1e308, -1e308, 0).IsFinite())
}
