// Package override contains a license.Overrider driven by user-provided rules
package override

import (
	"regexp"

	"github.com/xakep666/license/pkg/license"

	"go.uber.org/zap"
)

// Rule overrides license metadata for identifiers matching Match.
// Name and URL may contain regexp capturing group placeholders (i.e $1, $2).
// Empty Name or URL keeps the default value.
type Rule struct {
	Match *regexp.Regexp
	Name  string
	URL   string
}

type Overrider struct {
	rules []Rule
	log   *zap.Logger
}

func NewOverrider(log *zap.Logger, rules []Rule) *Overrider {
	return &Overrider{rules: rules, log: log.With(zap.String("component", "override"))}
}

func (o *Overrider) Override(l license.License) (license.License, bool) {
	for _, rule := range o.rules {
		if !rule.Match.MatchString(l.Short) {
			continue
		}

		if rule.Name != "" {
			l.Long = rule.Match.ReplaceAllString(l.Short, rule.Name)
		}
		if rule.URL != "" {
			l.URL = rule.Match.ReplaceAllString(l.Short, rule.URL)
		}

		o.log.Debug("override applied", zap.String("id", l.Short), zap.String("name", l.Long), zap.String("url", l.URL))
		return l, true
	}

	return l, false
}
