package domain

// FilterAlive returns the sub-sequence of members still inside their
// TTL window at the given instant (Unix milliseconds). The result
// depends only on the inputs, so both the query and mutation paths can
// share it. Order is preserved.
func FilterAlive(nowMillis int64, members []*PeerRecord) []*PeerRecord {
	alive := make([]*PeerRecord, 0, len(members))
	for _, m := range members {
		if !m.ExpiredAt(nowMillis) {
			alive = append(alive, m)
		}
	}
	return alive
}

// Views projects members to their public views at the given instant.
func Views(nowMillis int64, members []*PeerRecord) []PeerView {
	views := make([]PeerView, 0, len(members))
	for _, m := range members {
		views = append(views, m.View(nowMillis))
	}
	return views
}
