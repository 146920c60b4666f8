package cache

// ClearOrphans deletes every cache entry whose storage key is not in the
// live set, returning the keys it removed. The live set is derived from
// the movies still present in the user's collections; an entry with no
// owning movie is orphaned and reclaimable.
//
// Run this at application startup or shutdown only, never while fetches
// may be in flight, so a directory is not deleted mid-write.
func (s *Store) ClearOrphans(live map[string]struct{}) ([]string, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, key := range keys {
		if _, owned := live[key]; owned {
			continue
		}
		if err := s.Delete(key); err != nil {
			return removed, err
		}
		removed = append(removed, key)
	}
	return removed, nil
}
