package chatwoot

import (
	"regexp"
	"strings"
)

// Chatwoot labels accept lowercase alphanumerics, underscores and hyphens.
const maxTagLength = 50

var (
	invalidTagChars = regexp.MustCompile(`[^a-z0-9_-]`)
	underscoreRuns  = regexp.MustCompile(`_+`)
)

func SanitizeTag(tag string) string {
	s := strings.ToLower(tag)
	s = invalidTagChars.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if len(s) > maxTagLength {
		s = s[:maxTagLength]
	}

	return s
}

// CartTags marks a conversation with active purchase intent.
func CartTags() []string {
	return []string{"carrito_activo", "interes_compra"}
}

func ProductTags(productName string) []string {
	return []string{"producto_" + SanitizeTag(productName)}
}

func HandoffTags(reason string) []string {
	return []string{"derivado_humano", "motivo_" + SanitizeTag(reason)}
}
