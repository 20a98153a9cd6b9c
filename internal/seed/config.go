// Package seed fills a compliance service with plausible demo data dated
// around the service clock.
package seed

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	Seed      uint64 // PRNG seed; the same seed yields the same data
	Tasks     int    // tasks per area
	Employees int    // attendees per training session
	Waste     int    // waste hand-overs over the last year
}

// DefaultConfig returns a small but complete data set.
func DefaultConfig() Config {
	return Config{Seed: 1, Tasks: 6, Employees: 8, Waste: 40}
}

// Stats holds what a seeding run created.
type Stats struct {
	Tasks       int
	Suggestions int
	Training    int
	Records     map[string]int
	Responses   int
	StartTime   time.Time
	Duration    time.Duration
}

// Total is the number of records created across all collections.
func (s Stats) Total() int {
	total := s.Tasks + s.Suggestions + s.Training + s.Responses
	for _, n := range s.Records {
		total += n
	}
	return total
}
