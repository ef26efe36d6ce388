package core

import "encoding/json"

// Category is the closed set of defense kinds. There is no open extension
// point: evaluation dispatches over this enum with a switch.
type Category int

const (
	CategoryUnknown Category = iota
	InputValidation
	TypeChecking
	BoundsEnforcement
	Sanitization
	StateProtection
	RateLimiting
	CryptographicCheck
	LogicHardening
	AnomalyDetection
)

// Categories lists every category in canonical order.
var Categories = []Category{
	InputValidation,
	TypeChecking,
	BoundsEnforcement,
	Sanitization,
	StateProtection,
	RateLimiting,
	CryptographicCheck,
	LogicHardening,
	AnomalyDetection,
}

// String returns the wire name used in snapshots, persisted state and bus
// subjects.
func (c Category) String() string {
	switch c {
	case InputValidation:
		return "validate_input"
	case TypeChecking:
		return "check_type"
	case BoundsEnforcement:
		return "enforce_bounds"
	case Sanitization:
		return "sanitize"
	case StateProtection:
		return "protect_state"
	case RateLimiting:
		return "rate_limit"
	case CryptographicCheck:
		return "encrypt"
	case LogicHardening:
		return "harden_logic"
	case AnomalyDetection:
		return "detect_anomaly"
	default:
		return "unknown"
	}
}

// ParseCategory resolves a wire name back to its Category.
func ParseCategory(s string) Category {
	for _, c := range Categories {
		if c.String() == s {
			return c
		}
	}
	return CategoryUnknown
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*c = ParseCategory(str)
	return nil
}
