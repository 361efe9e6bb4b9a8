package gen

import (
	"fmt"

	"github.com/roach88/dslashgen/internal/coeff"
	"github.com/roach88/dslashgen/internal/ir"
)

// products accumulates the real and imaginary summands of a complex
// linear combination.
type products struct {
	re, im []ir.Term
}

// add appends sign·e·x, where x is the complex value (xr, xi).
// e must be real or purely imaginary with magnitude 1 or 2; anything else
// cannot be expressed as a signed term and is reported as an error.
func (p *products) add(e coeff.Coeff, sign int, xr, xi ir.Operand, suffix string) error {
	if e.IsZero() {
		return nil
	}
	re, im, ok := e.IntParts()
	if !ok || (re != 0 && im != 0) {
		return fmt.Errorf("coefficient %s is not a signed real or imaginary integer", e)
	}
	switch {
	case im == 0:
		k, err := termCoef(re * int64(sign))
		if err != nil {
			return err
		}
		p.re = append(p.re, ir.Term{Coef: k, X: xr, Suffix: suffix})
		p.im = append(p.im, ir.Term{Coef: k, X: xi, Suffix: suffix})
	default:
		// (b·i)(xr + i·xi) = -b·xi + i·b·xr
		k, err := termCoef(im * int64(sign))
		if err != nil {
			return err
		}
		p.re = append(p.re, ir.Term{Coef: -k, X: xi, Suffix: suffix})
		p.im = append(p.im, ir.Term{Coef: k, X: xr, Suffix: suffix})
	}
	return nil
}

func termCoef(v int64) (int, error) {
	switch v {
	case 1, -1, 2, -2:
		return int(v), nil
	}
	return 0, fmt.Errorf("term coefficient %d not in {±1, ±2}", v)
}

// compound returns the assignment operator that adds k·x for unit k.
func compound(k int64) (string, error) {
	switch k {
	case 1:
		return "+=", nil
	case -1:
		return "-=", nil
	}
	return "", fmt.Errorf("reconstruction coefficient %d is not a unit", k)
}
