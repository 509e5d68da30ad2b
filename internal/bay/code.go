package bay

import (
	"fmt"
	"regexp"
	"strconv"
)

var codePattern = regexp.MustCompile(`^A(\d+)$`)

// NextCode proposes the code for a new bay: one above the highest "A<n>"
// code, or the bay count plus one when no code follows the pattern.
// Numbers of deleted bays may be reused; codes are labels, not keys.
func NextCode(bays []Bay) string {
	best := -1
	for _, b := range bays {
		m := codePattern.FindStringSubmatch(b.Code)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		best = max(best, n)
	}
	next := len(bays) + 1
	if best >= 0 {
		next = best + 1
	}
	return fmt.Sprintf("A%02d", next)
}
