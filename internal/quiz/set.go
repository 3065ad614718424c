package quiz

func toSet[K comparable](xs []K) map[K]struct{} {
	m := make(map[K]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

func setsEqual[K comparable](a, b map[K]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// setCounts compares a deduplicated selection against the correct set.
func setCounts[K comparable](selected, correct map[K]struct{}) Counts {
	c := Counts{Total: len(correct)}
	for k := range selected {
		if _, ok := correct[k]; ok {
			c.Correct++
		} else {
			c.Incorrect++
		}
	}
	return c
}
