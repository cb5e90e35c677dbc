package nacha

import (
	"strconv"
	"strings"
)

// RecordLength is the width of every record in a NACHA file.
const RecordLength = 94

// Justify controls which side of a field a value is anchored to.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyRight
)

// Field renders value into exactly width characters. Short values are padded
// with fill on the side opposite the justification; long values keep their
// leftmost width characters.
func Field(value string, width int, justify Justify, fill byte) string {
	if width <= 0 {
		return ""
	}
	if len(value) >= width {
		return value[:width]
	}
	pad := strings.Repeat(string(fill), width-len(value))
	if justify == JustifyRight {
		return pad + value
	}
	return value + pad
}

// Alpha is a left justified, space filled field.
func Alpha(value string, width int) string {
	return Field(value, width, JustifyLeft, ' ')
}

// Numeric is a right justified, zero filled field.
func Numeric(n int64, width int) string {
	return Field(strconv.FormatInt(n, 10), width, JustifyRight, '0')
}

// ZeroRight is a left justified field padded with zeros on the right.
func ZeroRight(value string, width int) string {
	return Field(value, width, JustifyLeft, '0')
}

// Rightmost keeps the last width characters of value and zero fills the rest.
// Used by the entry hash fields, which drop high order digits on overflow.
func Rightmost(value string, width int) string {
	if len(value) > width {
		value = value[len(value)-width:]
	}
	return Field(value, width, JustifyRight, '0')
}
