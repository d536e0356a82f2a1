package notify

import (
	"strings"

	"findvax-notifier/internal/common/config"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"
)

// LineFormat selects how a location is rendered inside a message.
type LineFormat int

const (
	// LineWithLink renders "name: link".
	LineWithLink LineFormat = iota
	// LineNameOnly renders just the location name.
	LineNameOnly
)

// Composer renders groups with language-keyed templates.
type Composer struct {
	templates config.TemplateConfig
	format    LineFormat
	logger    logger.Logger
}

func NewComposer(templates config.TemplateConfig, format LineFormat, log logger.Logger) *Composer {
	return &Composer{templates: templates, format: format, logger: log}
}

// Compose renders one message: the template start, one line per location in
// group order, then the template end. Unknown languages use the default.
func (c *Composer) Compose(group models.PendingNotificationGroup) models.ComposedMessage {
	lang := c.resolveLang(group.Lang)
	tmpl := c.templates.Languages[lang]

	var b strings.Builder
	b.WriteString(tmpl.Start)
	for _, loc := range group.Locations {
		b.WriteString(c.line(loc))
	}
	b.WriteString(tmpl.End)

	return models.ComposedMessage{Recipient: group.Recipient, Body: b.String(), Lang: lang}
}

// ComposeAll renders every group, keeping order.
func (c *Composer) ComposeAll(groups []models.PendingNotificationGroup) []models.ComposedMessage {
	msgs := make([]models.ComposedMessage, 0, len(groups))
	for _, g := range groups {
		msgs = append(msgs, c.Compose(g))
	}
	return msgs
}

func (c *Composer) resolveLang(lang string) string {
	if lang == "" {
		return c.templates.DefaultLang
	}
	if _, ok := c.templates.Languages[lang]; ok {
		return lang
	}
	c.logger.Info("unrecognized lang id, using default", map[string]interface{}{
		"lang":        lang,
		"defaultLang": c.templates.DefaultLang,
	})
	return c.templates.DefaultLang
}

func (c *Composer) line(loc models.LocationLine) string {
	if c.format == LineNameOnly {
		return loc.Name + "\n"
	}
	return loc.Name + ": " + loc.Link + "\n"
}
