// Package translate routes user-facing text through a locale-aware printer.
package translate

import (
	"log"
	"os"
	"strings"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// LANG_ENV overrides the detected locales, as a comma separated list.
const LANG_ENV = "ASMI_LANG"

var printer *message.Printer

func init() {
	SetLanguage(Locales()...)
}

// Locales returns the preferred locales of the user.
func Locales() (locales []string) {
	if env := os.Getenv(LANG_ENV); len(env) != 0 {
		for _, tag := range strings.Split(env, ",") {
			tag = strings.TrimSpace(tag)
			if len(tag) > 0 {
				locales = append(locales, tag)
			}
		}
		return
	}

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("asmi: locale: %v", err)
	}

	return
}

// SetLanguage selects the printer for the best match of the locales,
// defaulting to en-US.
func SetLanguage(locales ...string) {
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
