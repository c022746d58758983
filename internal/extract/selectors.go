package extract

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
)

// ValidateSelectors reports the first selector that is empty or does not
// compile. goquery silently matches nothing for an invalid selector, so bad
// configuration is caught here instead.
func ValidateSelectors(selectors []string) error {
	if len(selectors) == 0 {
		return fmt.Errorf("no selectors configured")
	}
	for i, s := range selectors {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("selector %d is empty", i)
		}
		if _, err := cascadia.Compile(s); err != nil {
			return fmt.Errorf("selector %q: %w", s, err)
		}
	}
	return nil
}
