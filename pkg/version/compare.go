package version

import (
	"strconv"
	"strings"
)

var qualifiers = []string{"alpha", "beta", "milestone", "rc", "snapshot", "", "sp"}

var aliases = map[string]string{
	"ga":      "",
	"final":   "",
	"release": "",
	"cr":      "rc",
}

// releaseIndex is the comparable form of the empty (release) qualifier.
var releaseIndex = strconv.Itoa(indexOf(qualifiers, ""))

// Version is a tokenised Maven version. The zero value compares equal to "".
type Version struct {
	raw   string
	items *listItem
}

// Parse tokenises s. It never fails.
func Parse(s string) Version {
	return Version{raw: s, items: parse(s)}
}

// String returns the version as it was given to Parse.
func (v Version) String() string { return v.raw }

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	a, b := v.items, o.items
	if a == nil {
		a = &listItem{}
	}
	if b == nil {
		b = &listItem{}
	}
	return a.compare(b)
}

// Compare orders two version strings. See the package documentation.
func Compare(a, b string) int {
	return Parse(a).Compare(Parse(b))
}

// Newer reports whether candidate is strictly newer than baseline.
func Newer(candidate, baseline string) bool {
	return Compare(candidate, baseline) > 0
}

// IsSnapshot reports whether v carries the -SNAPSHOT suffix (any case).
func IsSnapshot(v string) bool {
	return strings.HasSuffix(strings.ToUpper(v), "-SNAPSHOT")
}

// =============================================================================
// Items
// =============================================================================

type item interface {
	// compare orders the item against other; other may be nil, meaning "absent".
	compare(other item) int
	isNull() bool
}

type intItem string // decimal digits without leading zeros; "" is zero

type stringItem string // qualifier after alias resolution

// listItem is a nested sub-version opened by "-" or a digit/letter transition.
type listItem struct{ items []item }

func (i intItem) isNull() bool { return i == "" }

func (i intItem) compare(other item) int {
	switch o := other.(type) {
	case nil:
		if i == "" {
			return 0
		}
		return 1
	case intItem:
		return compareDigits(string(i), string(o))
	case stringItem:
		return 1
	case *listItem:
		return 1
	}
	return 0
}

func (s stringItem) isNull() bool { return comparable(string(s)) == releaseIndex }

func (s stringItem) compare(other item) int {
	switch o := other.(type) {
	case nil:
		return strings.Compare(comparable(string(s)), releaseIndex)
	case intItem:
		return -1
	case stringItem:
		return strings.Compare(comparable(string(s)), comparable(string(o)))
	case *listItem:
		return -1
	}
	return 0
}

func (l *listItem) isNull() bool { return len(l.items) == 0 }

func (l *listItem) compare(other item) int {
	switch o := other.(type) {
	case nil:
		if len(l.items) == 0 {
			return 0
		}
		return l.items[0].compare(nil)
	case intItem:
		return -1
	case stringItem:
		return 1
	case *listItem:
		for i := 0; i < len(l.items) || i < len(o.items); i++ {
			var left, right item
			if i < len(l.items) {
				left = l.items[i]
			}
			if i < len(o.items) {
				right = o.items[i]
			}
			var c int
			if left == nil {
				if right != nil {
					c = -right.compare(nil)
				}
			} else {
				c = left.compare(right)
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}
	return 0
}

// normalize drops trailing null items, stopping at the first non-list item.
func (l *listItem) normalize() {
	for i := len(l.items) - 1; i >= 0; i-- {
		if l.items[i].isNull() {
			l.items = append(l.items[:i], l.items[i+1:]...)
		} else if _, ok := l.items[i].(*listItem); !ok {
			break
		}
	}
}

// =============================================================================
// Parsing
// =============================================================================

func parse(s string) *listItem {
	v := strings.ToLower(s)
	root := &listItem{}
	cur := root
	stack := []*listItem{root}
	isDigit := false
	start := 0

	nest := func() {
		next := &listItem{}
		cur.items = append(cur.items, next)
		cur = next
		stack = append(stack, next)
	}

	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '.' || c == '-':
			if i == start {
				cur.items = append(cur.items, intItem(""))
			} else {
				cur.items = append(cur.items, parseItem(isDigit, v[start:i]))
			}
			start = i + 1
			if c == '-' {
				nest()
			}
		case c >= '0' && c <= '9':
			if !isDigit && i > start {
				cur.items = append(cur.items, newStringItem(v[start:i], true))
				start = i
				nest()
			}
			isDigit = true
		default:
			if isDigit && i > start {
				cur.items = append(cur.items, parseItem(true, v[start:i]))
				start = i
				nest()
			}
			isDigit = false
		}
	}
	if len(v) > start {
		cur.items = append(cur.items, parseItem(isDigit, v[start:]))
	}

	// Deepest list first, so parents see their children already trimmed.
	for i := len(stack) - 1; i >= 0; i-- {
		stack[i].normalize()
	}
	return root
}

func parseItem(isDigit bool, buf string) item {
	if isDigit {
		return intItem(strings.TrimLeft(buf, "0"))
	}
	return newStringItem(buf, false)
}

func newStringItem(value string, followedByDigit bool) stringItem {
	if followedByDigit && len(value) == 1 {
		switch value[0] {
		case 'a':
			value = "alpha"
		case 'b':
			value = "beta"
		case 'm':
			value = "milestone"
		}
	}
	if alias, ok := aliases[value]; ok {
		value = alias
	}
	return stringItem(value)
}

// comparable maps a qualifier to a string whose lexical order is the
// qualifier order; unknown qualifiers sort after every known one.
func comparable(q string) string {
	if i := indexOf(qualifiers, q); i >= 0 {
		return strconv.Itoa(i)
	}
	return strconv.Itoa(len(qualifiers)) + "-" + q
}

func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
