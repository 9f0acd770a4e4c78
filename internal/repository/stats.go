package repository

import "context"

type AggregateCounts struct {
	Events       int64
	Participants int64
	Votes        int64
}

// CountAggregates reports table sizes for the monitoring gauges.
func (s *Store) CountAggregates(ctx context.Context) (AggregateCounts, error) {
	var counts AggregateCounts
	row := s.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM participants),
			(SELECT COUNT(*) FROM votes)
	`)
	if err := row.Scan(&counts.Events, &counts.Participants, &counts.Votes); err != nil {
		return AggregateCounts{}, storage(err)
	}
	return counts, nil
}
