package taxcalc

import "math"

// findBracket 查找应税所得所在的税率档位
// 功能：按上限升序扫描，返回第一个上限不小于应税所得的档位
// 参数：taxableIncome-应税所得，brackets-按上限升序排列的税率表
// 返回：匹配的档位；没有匹配时返回BracketLookupError
func findBracket(taxableIncome float64, brackets []Bracket) (Bracket, error) {
	for _, b := range brackets {
		if taxableIncome <= b.Upper {
			return b, nil
		}
	}
	return Bracket{}, &BracketLookupError{TaxableIncome: taxableIncome}
}

// roundHalfUp 四舍五入到整数，.5向正无穷方向进位
// 说明：与math.Round不同，-2.5得到-2而不是-3
func roundHalfUp(x float64) float64 {
	r := math.Floor(x)
	if x-r >= 0.5 {
		return r + 1
	}
	return r
}

func isFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
