package taxcalc

// Bracket 累进税率档位
type Bracket struct {
	Upper     float64 `json:"upper" yaml:"upper"`         // 应税所得上限（含），最后一档为+Inf
	Rate      float64 `json:"rate" yaml:"rate"`           // 边际税率
	Deduction float64 `json:"deduction" yaml:"deduction"` // 速算扣除数
}

// CalculationInput 计算输入
// 说明：零值即默认值，Deductions=0，Dependents=0
type CalculationInput struct {
	Income     float64 `json:"income" yaml:"income" bson:"income" form:"income"`
	Deductions float64 `json:"deductions" yaml:"deductions,omitempty" bson:"deductions" form:"deductions"`
	Dependents int     `json:"dependents" yaml:"dependents,omitempty" bson:"dependents" form:"dependents"`
}

// CalculationResult 计算结果
// 功能：回显输入并给出全部派生金额
// 说明：除TaxableIncome外的派生金额均已四舍五入到整数；
// TotalDeductions由未取整的各项之和单独取整，可能与取整后各项之和相差±1
type CalculationResult struct {
	Income              float64 `json:"income" yaml:"income"`
	Deductions          float64 `json:"deductions" yaml:"deductions"`
	Dependents          int     `json:"dependents" yaml:"dependents"`
	TaxableIncome       float64 `json:"taxableIncome" yaml:"taxableIncome"`
	NationalTax         float64 `json:"nationalTax" yaml:"nationalTax"`
	Surtax              float64 `json:"surtax" yaml:"surtax"`
	LocalTax            float64 `json:"localTax" yaml:"localTax"`
	HealthInsurance     float64 `json:"healthInsurance" yaml:"healthInsurance"`
	Pension             float64 `json:"pension" yaml:"pension"`
	EmploymentInsurance float64 `json:"employmentInsurance" yaml:"employmentInsurance"`
	TotalDeductions     float64 `json:"totalDeductions" yaml:"totalDeductions"`
	NetIncome           float64 `json:"netIncome" yaml:"netIncome"`
}

// Summary 批量计算汇总
type Summary struct {
	Count           int     `json:"count" yaml:"count"`
	Income          float64 `json:"income" yaml:"income"`
	TotalDeductions float64 `json:"totalDeductions" yaml:"totalDeductions"`
	NetIncome       float64 `json:"netIncome" yaml:"netIncome"`
}

// IsFinite 收入与扣除额均为有限值
func (in CalculationInput) IsFinite() bool {
	return isFinite(in.Income, in.Deductions)
}

// IsFinite 全部金额均为有限值
// 说明：有限输入在极端值下也可能溢出为±Inf，JSON无法表示
func (r CalculationResult) IsFinite() bool {
	return isFinite(
		r.Income, r.Deductions, r.TaxableIncome,
		r.NationalTax, r.Surtax, r.LocalTax,
		r.HealthInsurance, r.Pension, r.EmploymentInsurance,
		r.TotalDeductions, r.NetIncome,
	)
}

// IsFinite 汇总金额均为有限值
func (s Summary) IsFinite() bool {
	return isFinite(s.Income, s.TotalDeductions, s.NetIncome)
}
