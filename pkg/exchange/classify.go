package exchange

// OpenOrders derives the set of placed orders with no terminal counterpart:
// every order in all whose id appears in neither cancelled nor filled.
//
// Matching is by canonical id, never by count or reference, so duplicate
// delivery of the same event is harmless: a double-delivered placed event
// yields one open order, and a double-delivered cancel still excludes its
// order exactly once. Pure and total; never errors.
func OpenOrders(all, cancelled, filled []OrderEvent) []OrderEvent {
	closed := make(map[string]struct{}, len(cancelled)+len(filled))
	for _, ev := range cancelled {
		closed[ev.ID] = struct{}{}
	}
	for _, ev := range filled {
		closed[ev.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(all))
	open := make([]OrderEvent, 0, len(all))
	for _, ev := range all {
		if _, dup := seen[ev.ID]; dup {
			continue
		}
		seen[ev.ID] = struct{}{}
		if _, terminal := closed[ev.ID]; terminal {
			continue
		}
		open = append(open, ev)
	}
	return open
}
