package phone

import "strings"

// Format renders raw input in the country's display mask. Digit slots are
// filled progressively so partial input formats as it is typed; digits beyond
// MaxDigits are dropped. Output depends only on the digit sequence, so
// formatting formatted text returns it unchanged.
func (r Rule) Format(raw string) string {
	digits := r.Digits(raw)
	if len(digits) > r.MaxDigits {
		digits = digits[:r.MaxDigits]
	}
	if digits == "" {
		return ""
	}
	mask := r.maskFor(len(digits))
	if mask == "" {
		return digits
	}

	var b strings.Builder
	next := 0
	for i := 0; i < len(mask) && next < len(digits); i++ {
		if mask[i] == '#' {
			b.WriteByte(digits[next])
			next++
			continue
		}
		b.WriteByte(mask[i])
	}
	return b.String()
}

func (r Rule) maskFor(n int) string {
	for _, m := range r.masks {
		if strings.Count(m, "#") >= n {
			return m
		}
	}
	if len(r.masks) == 0 {
		return ""
	}
	return r.masks[len(r.masks)-1]
}
