// Package outreach renders personalized messages for discovered leads and
// assembles them into a reviewable outreach bundle.
package outreach

import (
	"strings"

	"github.com/entrhq/prospect/pkg/platform"
)

// Template names.
const (
	TemplateDefault   = "default"
	TemplateLinkedIn  = "linkedin"
	TemplateTwitter   = "twitter"
	TemplateColdEmail = "cold_email"
)

// Placeholder fallbacks used when a lead is missing the source attribute.
const (
	fallbackName     = "there"
	fallbackHeadline = "your field"
	fallbackTopic    = "business automation"
)

var templates = map[string]string{
	TemplateDefault: `Hi {name},

I noticed your profile and thought you might be interested in our AI chatbot services.

We help businesses like yours:
- Automate customer support 24/7
- Increase response time by 90%
- Reduce support costs by 60%

Would you be open to a quick 15-minute call to see how we can help your business?

Best regards,
{sender}`,

	TemplateLinkedIn: `Hi {name},

I came across your profile and was impressed by your role as {headline}.

I specialize in building AI-powered chatbots that help businesses automate customer service and lead generation. Given your experience in {headline}, I thought this might be valuable for you or your network.

Would you be interested in learning more?

Best,
{sender}`,

	TemplateTwitter: `Hi {handle},

Saw your post about {topic}. We've helped similar businesses automate their customer service with AI chatbots.

Would love to show you how it works. DM me if interested!`,

	TemplateColdEmail: `Subject: Automate Your Customer Service with AI

Hi {name},

I help businesses automate repetitive customer inquiries using AI chatbots. Here's what we can do for you:

- 24/7 instant responses
- Handle 1000+ conversations simultaneously
- Integrate with WhatsApp, Facebook, Instagram
- Reduce support costs by 60%

Interested in a free demo? Reply if you'd like to see it in action!

Best regards,
{sender}`,
}

// Engine renders named templates for leads.
type Engine struct {
	sender string
}

// NewEngine creates a template engine signing messages as sender.
func NewEngine(sender string) *Engine {
	if sender == "" {
		sender = "The Prospect Team"
	}
	return &Engine{sender: sender}
}

// Render produces the message for lead from the named template. An unknown
// template name falls back to the default template rather than failing.
// Placeholders for attributes the lead is missing render as documented
// fallbacks, never as leftover tokens.
func (e *Engine) Render(lead platform.Lead, templateName string) string {
	text, ok := templates[templateName]
	if !ok {
		text = templates[TemplateDefault]
	}

	name := lead.Identity
	if name == "" {
		name = fallbackName
	}
	handle := lead.Attr("handle", name)

	r := strings.NewReplacer(
		"{name}", name,
		"{handle}", handle,
		"{headline}", lead.Attr("headline", fallbackHeadline),
		"{topic}", lead.Attr("hashtag", fallbackTopic),
		"{sender}", e.sender,
	)
	return r.Replace(text)
}

// TemplateFor picks the template conventionally paired with a platform.
func TemplateFor(p platform.Platform) string {
	switch p {
	case platform.LinkedIn:
		return TemplateLinkedIn
	case platform.Twitter:
		return TemplateTwitter
	default:
		return TemplateDefault
	}
}
