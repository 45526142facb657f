package session

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var versionDigits = regexp.MustCompile(`\d+(\.\d+)*`)

// extractVersion pulls the dotted version out of a (get-info :version)
// reply such as (:version "4.8.12").
func extractVersion(line string) string {
	return versionDigits.FindString(line)
}

// versionAtLeast compares two dotted version strings. Well-formed versions
// go through semver; anything else falls back to lexicographic comparison
// of the integer component lists, where [4,3,2,1] >= [4,3,2].
func versionAtLeast(have, want string) bool {
	if have == "" {
		return false
	}
	hv, herr := semver.NewVersion(have)
	wv, werr := semver.NewVersion(want)
	if herr == nil && werr == nil {
		return !hv.LessThan(wv)
	}
	return compareComponents(splitComponents(have), splitComponents(want)) >= 0
}

func splitComponents(v string) []int {
	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		out = append(out, n)
	}
	return out
}

func compareComponents(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
