package analysis

import "math/rand"

// Sample draws up to n titles without replacement using a seeded source.
// A group smaller than n is returned whole, in its original order.
func Sample(titles []string, n int, seed int64) []string {
	if n <= 0 || len(titles) == 0 {
		return nil
	}
	if len(titles) <= n {
		return append([]string(nil), titles...)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(titles))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = titles[perm[i]]
	}
	return out
}
