package sitebot

import (
	"fmt"
	"strings"
)

// CTA kinds.
const (
	CTAAppointment = "appointment"
	CTAContactForm = "contact_form"
	CTAMail        = "mail"
)

// CallToAction is a link offered alongside a reply.
type CallToAction struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// CannedResponse is a deterministic reply used when the model is unavailable.
type CannedResponse struct {
	Text   string        `json:"text"`
	Action *CallToAction `json:"action,omitempty"`
}

type cannedRule struct {
	keywords []string
	reply    func(site SiteConfig) CannedResponse
}

// cannedRules are evaluated in order; the first match wins.
var cannedRules = []cannedRule{
	{
		keywords: []string{"termin", "buchen", "buchung"},
		reply: func(site SiteConfig) CannedResponse {
			return CannedResponse{
				Text: "Gern! Ich öffne das Formular zur Terminvereinbarung.",
				Action: &CallToAction{
					Kind:  CTAAppointment,
					Label: "Termin anfragen",
					URL:   site.ContactFormURL,
				},
			}
		},
	},
	{
		keywords: []string{"leistung", "angebot"},
		reply: func(SiteConfig) CannedResponse {
			return CannedResponse{
				Text: "Kurzüberblick: Website, SEO-Grundoptimierung, Wartung/Updates, Hosting/SSL, E-Mail-Support. Womit darf ich starten?",
			}
		},
	},
	{
		keywords: []string{"öffnungs", "erreichbar"},
		reply: func(site SiteConfig) CannedResponse {
			return CannedResponse{
				Text: fmt.Sprintf("Wir sind in der Regel erreichbar: %s. Der Chat ist 24/7 verfügbar.", site.BusinessHours),
			}
		},
	},
	{
		keywords: []string{"kontakt", "support"},
		reply: func(site SiteConfig) CannedResponse {
			return CannedResponse{
				Text: "Sehr gern. Ich leite Sie zum Kontaktformular.",
				Action: &CallToAction{
					Kind:  CTAContactForm,
					Label: "Kontaktformular",
					URL:   site.ContactFormURL,
				},
			}
		},
	},
}

// MatchCanned returns the canned reply for input. Matching is a
// case-insensitive substring test against ordered keyword groups; when no
// group matches, a generic clarification prompt is returned.
func MatchCanned(input string, site SiteConfig) CannedResponse {
	lower := strings.ToLower(input)
	for _, rule := range cannedRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply(site)
			}
		}
	}
	return CannedResponse{
		Text: "Gerne! Wie kann ich Sie konkret unterstützen: Termin, Leistungen, Support oder etwas anderes?",
	}
}

// HandoffActions returns the contact links presented on handoff.
func HandoffActions(site SiteConfig) []CallToAction {
	return []CallToAction{
		{Kind: CTAMail, Label: "📧 Direkter Kontakt", URL: "mailto:" + site.ContactEmail},
		{Kind: CTAContactForm, Label: "📝 Kontaktformular", URL: site.ContactFormURL},
	}
}
