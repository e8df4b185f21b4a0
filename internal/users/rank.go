package users

import "sort"

// mostCommon ranks keys by counts descending. keys must be in first-seen
// order; the stable sort keeps that order for equal counts. A negative n
// returns every key.
func mostCommon(keys []string, counts map[string]int, n int) []CityCount {
	ranked := make([]CityCount, 0, len(keys))
	for _, k := range keys {
		ranked = append(ranked, CityCount{City: k, Count: counts[k]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// counter is a multiset that remembers first-seen order.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += n
}

func (c *counter) mostCommon(n int) []CityCount {
	return mostCommon(c.order, c.counts, n)
}
