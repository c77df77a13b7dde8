package taxcalc

import (
	"errors"
	"fmt"
)

// ErrBracketLookup 找不到匹配的税率档位
var ErrBracketLookup = errors.New("unable to determine tax bracket")

// BracketLookupError 税率档位查找失败
// 说明：默认税率表最后一档无上限，正常情况下不会出现；
// 税率表被修改后仍须明确报告该错误，而不是静默取默认档
type BracketLookupError struct {
	TaxableIncome float64
}

func (e *BracketLookupError) Error() string {
	return fmt.Sprintf("%v: taxable income %v exceeds every bracket", ErrBracketLookup, e.TaxableIncome)
}

func (e *BracketLookupError) Unwrap() error { return ErrBracketLookup }
