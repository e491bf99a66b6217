package models

import "strings"

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var AllSizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// ParseSize normalizes s. The empty string is a valid "no size" value.
func ParseSize(s string) (Size, bool) {
	size := Size(strings.ToUpper(strings.TrimSpace(s)))
	if size == "" {
		return "", true
	}
	for _, known := range AllSizes {
		if size == known {
			return size, true
		}
	}
	return "", false
}
