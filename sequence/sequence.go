// Package sequence enumerates valid stage orderings: fixed stages keep
// their input positions, free stages permute across the rest.
package sequence

import (
	"interview-scheduler/errors"
	"interview-scheduler/models"
)

// Enumerate returns every ordering consistent with the fixed-position
// flags. With f free stages the count is f!; the enumerator refuses to
// expand past maxOrderings and fails with a CapacityError instead.
func Enumerate(stages []models.Stage, maxOrderings int) ([]models.Ordering, error) {
	fixed := make(map[int]bool, len(stages))
	var free []int
	for i, s := range stages {
		if s.Fixed {
			fixed[i] = true
		} else {
			free = append(free, i)
		}
	}

	count, ok := factorial(len(free), maxOrderings)
	if !ok {
		return nil, &errors.CapacityError{Count: count, Limit: maxOrderings}
	}

	if len(free) == 0 {
		ordering := make(models.Ordering, len(stages))
		for i := range stages {
			ordering[i] = i
		}
		return []models.Ordering{ordering}, nil
	}

	orderings := make([]models.Ordering, 0, count)
	permute(free, 0, func(perm []int) {
		ordering := make(models.Ordering, len(stages))
		next := 0
		for pos := range stages {
			if fixed[pos] {
				ordering[pos] = pos
			} else {
				ordering[pos] = perm[next]
				next++
			}
		}
		orderings = append(orderings, ordering)
	})
	return orderings, nil
}

// factorial computes n! but stops multiplying once the product passes
// limit, so large n cannot overflow. ok is false when the limit was hit.
func factorial(n, limit int) (int, bool) {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
		if f > limit {
			return f, false
		}
	}
	return f, true
}

// permute visits every permutation of items in place (Heap's algorithm
// would reorder unpredictably; plain recursion keeps the first emitted
// permutation equal to the input order).
func permute(items []int, k int, visit func([]int)) {
	if k == len(items) {
		visit(items)
		return
	}
	for i := k; i < len(items); i++ {
		items[k], items[i] = items[i], items[k]
		permute(items, k+1, visit)
		items[k], items[i] = items[i], items[k]
	}
}
