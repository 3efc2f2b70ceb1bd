package cache

// DailyStatsKey caches the aggregated stats for the most recent processing
// date; the TTL bounds staleness after a new batch lands.
const DailyStatsKey = "stats:daily:latest"
