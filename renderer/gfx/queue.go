package gfx

import "slices"

// QueueFamilies holds the family index chosen for each queue role.
type QueueFamilies struct {
	Graphics int
	Compute  int
	Transfer int
}

// Unique returns the distinct family indices in ascending order.
func (q QueueFamilies) Unique() []int {
	set := map[int]struct{}{q.Graphics: {}, q.Compute: {}, q.Transfer: {}}
	unique := make([]int, 0, len(set))
	for idx := range set {
		unique = append(unique, idx)
	}
	slices.Sort(unique)
	return unique
}

// AssignQueueFamilies walks families once in index order. A family serves at
// most one role: graphics needs presentation support, compute must not be the
// graphics family and transfer must not carry video bits. A compute family
// listed ahead of the graphics family is still taken. Families without
// queues are skipped.
func AssignQueueFamilies(families []QueueFamilyProperties, supportsPresent func(family int) (bool, error)) (QueueFamilies, error) {
	graphics, compute, transfer := -1, -1, -1

	for idx, family := range families {
		if family.QueueCount == 0 {
			continue
		}

		assigned := false
		if graphics < 0 && family.Flags.Has(QueueGraphics) {
			ok, err := supportsPresent(idx)
			if err != nil {
				return QueueFamilies{}, err
			}
			if ok {
				graphics = idx
				assigned = true
			}
		}

		if !assigned {
			switch {
			case compute < 0 && idx != graphics && family.Flags.Has(QueueCompute):
				compute = idx
			case transfer < 0 && family.Flags.Has(QueueTransfer) && family.Flags&(QueueVideoDecode|QueueVideoEncode) == 0:
				transfer = idx
			}
		}

		if graphics >= 0 && compute >= 0 && transfer >= 0 {
			break
		}
	}

	var unassigned []QueueRole
	if graphics < 0 {
		unassigned = append(unassigned, RoleGraphics)
	}
	if compute < 0 {
		unassigned = append(unassigned, RoleCompute)
	}
	if transfer < 0 {
		unassigned = append(unassigned, RoleTransfer)
	}
	if len(unassigned) > 0 {
		return QueueFamilies{}, &UnassignedQueueError{Roles: unassigned}
	}

	return QueueFamilies{Graphics: graphics, Compute: compute, Transfer: transfer}, nil
}
