package taxcalc

import "math"

// 所得税累进税率表（年收入，单位：日元）
// 速算扣除数为累计扣除额，与税率一一对应
var defaultBrackets = []Bracket{
	{Upper: 1950000, Rate: 0.05, Deduction: 0},
	{Upper: 3300000, Rate: 0.10, Deduction: 97500},
	{Upper: 6950000, Rate: 0.20, Deduction: 427500},
	{Upper: 9000000, Rate: 0.23, Deduction: 636000},
	{Upper: 18000000, Rate: 0.33, Deduction: 1536000},
	{Upper: 40000000, Rate: 0.40, Deduction: 2796000},
	{Upper: math.Inf(1), Rate: 0.45, Deduction: 4796000},
}

const (
	DependentDeduction      = 380000 // 每名扶养亲属的扣除额
	SurtaxRate              = 0.021  // 复兴特别所得税
	LocalTaxRate            = 0.10   // 住民税（固定税率）
	HealthInsuranceRate     = 0.05   // 健康保险
	PensionRate             = 0.0915 // 厚生年金
	EmploymentInsuranceRate = 0.005  // 雇佣保险
)

// Brackets 获取默认税率档位
// 功能：返回税率表的副本，调用方修改返回值不会影响计算
func Brackets() []Bracket {
	out := make([]Bracket, len(defaultBrackets))
	copy(out, defaultBrackets)
	return out
}
