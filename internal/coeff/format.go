package coeff

import "github.com/cockroachdb/apd/v3"

// Format renders c as a canonical source literal.
//
//	0        -> "0"
//	i, -i    -> "i", "-i"
//	2        -> "2"
//	0.5i     -> "0.5i"
//	1-i      -> "1-i"
//	-2+0.5i  -> "-2+0.5i"
//
// A zero part never produces a term and a unit imaginary part never
// produces a "1" factor.
func Format(c Coeff) string {
	re, im := c.real(), c.imag()
	switch {
	case re.IsZero() && im.IsZero():
		return "0"
	case re.IsZero():
		return imagText(im)
	case im.IsZero():
		return re.Text('f')
	}
	if im.Sign() < 0 {
		return re.Text('f') + "-" + imagText(neg(im))
	}
	return re.Text('f') + "+" + imagText(im)
}

func imagText(im *apd.Decimal) string {
	switch {
	case isUnit(im) && im.Sign() > 0:
		return "i"
	case isUnit(im):
		return "-i"
	default:
		return im.Text('f') + "i"
	}
}
