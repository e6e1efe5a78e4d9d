package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DiscountType tags how a discount value is interpreted
type DiscountType int

const (
	DiscountTypeAmount     DiscountType = 0
	DiscountTypePercentage DiscountType = 1
)

func (t DiscountType) String() string {
	names := [...]string{"Amount", "Percentage"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Amount"
	}
	return names[t]
}

// ParseDiscountType parses a discount type name, case-insensitively.
func ParseDiscountType(s string) (DiscountType, error) {
	switch strings.ToLower(s) {
	case "amount":
		return DiscountTypeAmount, nil
	case "percentage", "percent":
		return DiscountTypePercentage, nil
	}
	return DiscountTypeAmount, fmt.Errorf("unknown discount type %q", s)
}

func (t DiscountType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DiscountType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = DiscountType(i)
		return nil
	}
	parsed, err := ParseDiscountType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
