package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"

	// Recommendation variants select the advisor persona.
	VariantInteriorDesign = "interior_design"
	VariantStyleAccess    = "style_access"

	DefaultPageSize = 20
	MaxPageSize     = 100
)
