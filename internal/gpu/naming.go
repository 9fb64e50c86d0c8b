package gpu

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Godmook/multigpu-be/internal/constants"
)

// Namer validates node names against the fleet naming convention
// "<prefix>-<family>-<3 digit suffix>" and extracts the GPU family token.
type Namer struct {
	re *regexp.Regexp
}

func NewNamer(fleetPrefix string) *Namer {
	return &Namer{
		re: regexp.MustCompile(fmt.Sprintf(`^%s-([A-Za-z0-9]+)-\d{3}$`, regexp.QuoteMeta(fleetPrefix))),
	}
}

// Classify reports whether name follows the fleet convention and, if so,
// the upper-cased family token. The family is taken verbatim from the name;
// there is no model vocabulary lookup.
func (n *Namer) Classify(name string) (family string, ok bool) {
	m := n.re.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// Family is Classify with the unknown sentinel instead of a bool, for
// callers that only want a display value.
func (n *Namer) Family(name string) string {
	if family, ok := n.Classify(name); ok {
		return family
	}
	return constants.UnknownGPUFamily
}
