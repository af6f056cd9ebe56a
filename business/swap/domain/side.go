// Package domain contains the core domain types for the swap context.
package domain

// Side indicates which leg of the trade the user fixed.
type Side string

const (
	// SideSell fixes the input amount; the output is quoted.
	SideSell Side = "SELL"
	// SideBuy fixes the output amount; the input is quoted.
	SideBuy Side = "BUY"
)

// Field identifies the form field the user last edited.
type Field string

const (
	FieldInput  Field = "INPUT"
	FieldOutput Field = "OUTPUT"
)

// SideForField maps the edited field to the quote side.
func SideForField(f Field) Side {
	if f == FieldOutput {
		return SideBuy
	}
	return SideSell
}
