package model

// TemplateColor enum constants for the preview template palette.
const (
	TemplateColorDefault = "default"
	TemplateColorGray    = "gray"
	TemplateColorDark    = "dark"
	TemplateColorSlate   = "slate"
	TemplateColorRed     = "red"
	TemplateColorPink    = "pink"
	TemplateColorPurple  = "purple"
	TemplateColorNavy    = "navy"
	TemplateColorBlue    = "blue"
	TemplateColorSky     = "sky"
	TemplateColorTeal    = "teal"
	TemplateColorGreen   = "green"
	TemplateColorLime    = "lime"
	TemplateColorCustom  = "custom"
)

// InvoiceSettings is process-wide presentation configuration, one instance.
// CustomColor only applies when TemplateColor is "custom"; ReviewLink only
// when RequestReviews is set.
type InvoiceSettings struct {
	TemplateColor  string `json:"templateColor"`
	CustomColor    string `json:"customColor,omitempty"`
	RequestReviews bool   `json:"requestReviews"`
	ReviewLink     string `json:"reviewLink,omitempty"`
}

// DefaultSettings returns the out-of-the-box settings.
func DefaultSettings() InvoiceSettings {
	return InvoiceSettings{
		TemplateColor: TemplateColorDefault,
	}
}
