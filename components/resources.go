package components

import (
	"fmt"
	"sort"
	"strings"
)

// ResourceType identifies something villagers produce and buildings store.
type ResourceType uint8

const (
	Food ResourceType = iota
	Wood
)

// String returns the display name for a ResourceType.
func (r ResourceType) String() string {
	names := ResourceTypeNames()
	if int(r) < len(names) {
		return names[r]
	}
	return "Unknown"
}

// ResourceTypeNames returns display names in ResourceType order.
func ResourceTypeNames() []string {
	return []string{"Food", "Wood"}
}

// ParseResourceType maps a config name ("food", "wood") to its ResourceType.
func ParseResourceType(name string) (ResourceType, error) {
	for i, n := range ResourceTypeNames() {
		if strings.EqualFold(n, name) {
			return ResourceType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource type %q", name)
}

// Resources is an amount per resource type. A nil value is an empty set.
type Resources map[ResourceType]uint32

// Amount returns how much of r is held.
func (rs Resources) Amount(r ResourceType) uint32 {
	return rs[r]
}

// Contains reports whether rs holds at least every amount in need.
func (rs Resources) Contains(need Resources) bool {
	for r, amount := range need {
		if rs.Amount(r) < amount {
			return false
		}
	}
	return true
}

// Combine returns the sum of rs and other without modifying either.
func (rs Resources) Combine(other Resources) Resources {
	result := make(Resources, len(rs)+len(other))
	for r, amount := range rs {
		result[r] = amount
	}
	for r, amount := range other {
		result[r] += amount
	}
	return result
}

// IsEmpty reports whether every amount is zero.
func (rs Resources) IsEmpty() bool {
	for _, amount := range rs {
		if amount > 0 {
			return false
		}
	}
	return true
}

// Total returns the sum over all types.
func (rs Resources) Total() uint64 {
	var total uint64
	for _, amount := range rs {
		total += uint64(amount)
	}
	return total
}

// String formats the non-zero amounts in type order, e.g. "Food:3 Wood:10".
func (rs Resources) String() string {
	types := make([]ResourceType, 0, len(rs))
	for r, amount := range rs {
		if amount > 0 {
			types = append(types, r)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	parts := make([]string, len(types))
	for i, r := range types {
		parts[i] = fmt.Sprintf("%s:%d", r, rs[r])
	}
	return strings.Join(parts, " ")
}

// Storage holds resources on a building placement.
type Storage struct {
	Resources Resources
}

// Add deposits res into the storage.
func (s *Storage) Add(res Resources) {
	s.Resources = s.Resources.Combine(res)
}

// Remove takes up to amount of r and returns how much could not be taken.
func (s *Storage) Remove(r ResourceType, amount uint32) uint32 {
	stored := s.Resources.Amount(r)
	taken := min(stored, amount)
	if s.Resources == nil {
		s.Resources = make(Resources)
	}
	s.Resources[r] = stored - taken
	return amount - taken
}

// RemoveMany takes as much of res as possible and returns what is still owed.
func (s *Storage) RemoveMany(res Resources) Resources {
	owed := make(Resources)
	for r, amount := range res {
		if left := s.Remove(r, amount); left > 0 {
			owed[r] = left
		}
	}
	return owed
}
