package enums

// AlertLevel drives how a transient storefront notice is rendered.
type AlertLevel string

const (
	AlertLevelInfo    AlertLevel = "info"
	AlertLevelSuccess AlertLevel = "success"
	AlertLevelDanger  AlertLevel = "danger"
)

// String implements fmt.Stringer.
func (a AlertLevel) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AlertLevel.
func (a AlertLevel) IsValid() bool {
	switch a {
	case AlertLevelInfo, AlertLevelSuccess, AlertLevelDanger:
		return true
	}
	return false
}
