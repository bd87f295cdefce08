package usecase

import "resultscrawler/internal/domain"

// Diff selects the entries to process out of a freshly walked listing. Input
// is newest-first; the result is the prefix strictly newer than the cursor.
// With forceAll or no cursor the whole listing is returned. A cursor that is
// never found also yields the whole listing: the walk depth may simply not
// have reached far enough back, and "all new" is the accepted reading.
func Diff(all []domain.Entry, cursor *domain.Entry, forceAll bool) []domain.Entry {
	if forceAll || cursor == nil {
		return all
	}

	for i, entry := range all {
		if entry.Equal(*cursor) {
			return all[:i]
		}
	}
	return all
}
