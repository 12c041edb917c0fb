package override_test

import (
	"regexp"
	"testing"

	"github.com/xakep666/license/pkg/license"
	"github.com/xakep666/license/pkg/override"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestOverrider_Override(t *testing.T) {
	type testCase struct {
		Rules      []override.Rule
		Input      string
		Overridden bool
		Name       string
		URL        string
	}

	f := func(tc testCase) {
		t.Helper()

		input := license.License{
			Short: tc.Input,
			Long:  tc.Input,
			URL:   "https://example.com/" + tc.Input + ".txt",
			Path:  "/data/" + tc.Input + ".txt",
		}

		actual, ok := override.NewOverrider(zaptest.NewLogger(t), tc.Rules).Override(input)
		assert.Equal(t, tc.Overridden, ok)
		assert.Equal(t, tc.Input, actual.Short)
		assert.Equal(t, input.Path, actual.Path)
		assert.Equal(t, tc.Name, actual.Long)
		assert.Equal(t, tc.URL, actual.URL)
	}

	f(testCase{
		Rules: nil,
		Input: "MIT",
		Name:  "MIT",
		URL:   "https://example.com/MIT.txt",
	})

	f(testCase{
		Rules: []override.Rule{
			{
				Match: regexp.MustCompile(`^GPL-(\d\.\d)-only$`),
				Name:  "GNU General Public License v$1 only",
				URL:   "https://www.gnu.org/licenses/gpl-$1.txt",
			},
		},
		Input:      "GPL-3.0-only",
		Overridden: true,
		Name:       "GNU General Public License v3.0 only",
		URL:        "https://www.gnu.org/licenses/gpl-3.0.txt",
	})

	f(testCase{
		Rules: []override.Rule{
			{
				Match: regexp.MustCompile(`^Unlicense$`),
				URL:   "https://unlicense.org/UNLICENSE",
			},
		},
		Input:      "Unlicense",
		Overridden: true,
		Name:       "Unlicense",
		URL:        "https://unlicense.org/UNLICENSE",
	})

	f(testCase{
		Rules: []override.Rule{
			{
				Match: regexp.MustCompile(`^BSD-`),
				Name:  "first",
			},
			{
				Match: regexp.MustCompile(`^BSD-3-Clause$`),
				Name:  "second",
			},
		},
		Input:      "BSD-3-Clause",
		Overridden: true,
		Name:       "first3-Clause",
		URL:        "https://example.com/BSD-3-Clause.txt",
	})

	f(testCase{
		Rules: []override.Rule{
			{
				Match: regexp.MustCompile(`^GPL`),
				Name:  "GPL",
			},
		},
		Input: "LGPL-2.1-only",
		Name:  "LGPL-2.1-only",
		URL:   "https://example.com/LGPL-2.1-only.txt",
	})
}
