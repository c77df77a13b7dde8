package taxcalc

import (
	"fmt"

	"github.com/samber/lo"
)

// Calculate 计算个人所得税与到手收入
// 功能：根据总收入、所得扣除额和扶养亲属人数，计算各项税费与社会保险费
// 参数：income-总收入，deductions-所得扣除额，dependents-扶养亲属人数
// 返回：完整的计算结果，或BracketLookupError
// 算法说明：
// 1. 应税所得 = max(收入 - 扣除额 - 扶养人数*380000, 0)
// 2. 按税率表查找档位，所得税 = max(应税所得*税率 - 速算扣除数, 0)
// 3. 复兴特别所得税 = 所得税*2.1%，住民税 = 应税所得*10%
// 4. 健康保险、厚生年金、雇佣保险按总收入计算，不受扣除影响
// 5. 扣除合计 = 各项未取整金额之和取整一次
// 6. 到手收入 = 收入 - 扣除合计
// 说明：输入不做校验，负数按原样参与运算
func Calculate(income, deductions float64, dependents int) (CalculationResult, error) {
	return calculateWith(defaultBrackets, income, deductions, dependents)
}

// CalculateInput 根据输入记录计算
func CalculateInput(in CalculationInput) (CalculationResult, error) {
	return Calculate(in.Income, in.Deductions, in.Dependents)
}

// CalculateBatch 批量计算
// 功能：按顺序计算每条输入，结果与输入一一对应
// 返回：全部结果；任意一条失败则返回带序号的错误
func CalculateBatch(ins []CalculationInput) ([]CalculationResult, error) {
	results := make([]CalculationResult, 0, len(ins))
	for i, in := range ins {
		r, err := CalculateInput(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Summarize 汇总批量计算结果
func Summarize(results []CalculationResult) Summary {
	return Summary{
		Count:           len(results),
		Income:          lo.SumBy(results, func(r CalculationResult) float64 { return r.Income }),
		TotalDeductions: lo.SumBy(results, func(r CalculationResult) float64 { return r.TotalDeductions }),
		NetIncome:       lo.SumBy(results, func(r CalculationResult) float64 { return r.NetIncome }),
	}
}

func calculateWith(brackets []Bracket, income, deductions float64, dependents int) (CalculationResult, error) {
	dependentDeduction := float64(dependents) * DependentDeduction
	taxableIncome := max(income-deductions-dependentDeduction, 0)

	bracket, err := findBracket(taxableIncome, brackets)
	if err != nil {
		return CalculationResult{}, err
	}

	// 显式转换阻止编译器融合乘加，保证各平台结果一致
	nationalTax := max(float64(taxableIncome*bracket.Rate)-bracket.Deduction, 0)
	surtax := nationalTax * SurtaxRate
	localTax := taxableIncome * LocalTaxRate

	// 社会保险按总收入计算
	healthInsurance := income * HealthInsuranceRate
	pension := income * PensionRate
	employmentInsurance := income * EmploymentInsuranceRate

	// 合计只取整一次，不能用取整后的各项相加
	totalDeductions := roundHalfUp(
		nationalTax + surtax + localTax + healthInsurance + pension + employmentInsurance,
	)

	return CalculationResult{
		Income:              income,
		Deductions:          deductions,
		Dependents:          dependents,
		TaxableIncome:       taxableIncome,
		NationalTax:         roundHalfUp(nationalTax),
		Surtax:              roundHalfUp(surtax),
		LocalTax:            roundHalfUp(localTax),
		HealthInsurance:     roundHalfUp(healthInsurance),
		Pension:             roundHalfUp(pension),
		EmploymentInsurance: roundHalfUp(employmentInsurance),
		TotalDeductions:     totalDeductions,
		NetIncome:           income - totalDeductions,
	}, nil
}
