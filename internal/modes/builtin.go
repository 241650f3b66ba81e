package modes

import "github.com/and161185/pgsql-check/model"

var builtin = []model.Mode{
	{
		Name:    ConnectTime,
		Help:    "Time to connect to the server",
		Kind:    model.Direct,
		Label:   "time",
		Unit:    "s",
		Message: "Time to connect was %ss",
	},
	{
		Name:    "connections",
		Help:    "Number of open connections",
		Query:   "SELECT count(*) FROM pg_stat_activity",
		Kind:    model.Direct,
		Label:   "connections",
		Message: "Number of open connections is %s",
	},
	{
		Name: "connection_usage",
		Help: "Open connections as a percentage of max_connections",
		Query: "SELECT count(*)::float8 FROM pg_stat_activity " +
			"UNION ALL SELECT setting::float8 FROM pg_settings WHERE name = 'max_connections'",
		Kind:     model.Ratio,
		Label:    "connection_usage",
		Unit:     "%",
		Message:  "Connection usage is %s%%",
		Modifier: 100,
	},
	{
		Name: "cache_hit",
		Help: "Buffer cache hit ratio",
		Query: "SELECT sum(blks_hit)::float8 FROM pg_stat_database " +
			"UNION ALL SELECT sum(blks_hit + blks_read)::float8 FROM pg_stat_database",
		Kind:     model.Ratio,
		Label:    "cache_hit",
		Unit:     "%",
		Message:  "Cache hit ratio is %s%%",
		Modifier: 100,
	},
	{
		Name:    "locks",
		Help:    "Number of held or awaited locks",
		Query:   "SELECT count(*) FROM pg_locks",
		Kind:    model.Direct,
		Label:   "locks",
		Message: "Number of locks is %s",
	},
	{
		Name:     "database_size",
		Help:     "Total size of all databases",
		Query:    "SELECT sum(pg_database_size(datname))::float8 FROM pg_database",
		Kind:     model.Direct,
		Label:    "database_size",
		Unit:     "MB",
		Message:  "Total database size is %sMB",
		Modifier: 1.0 / (1 << 20),
	},
	{
		Name:    "commits",
		Help:    "Committed transactions per second",
		Query:   "SELECT sum(xact_commit)::float8 FROM pg_stat_database",
		Kind:    model.Rate,
		Label:   "commits",
		Unit:    "/s",
		Message: "Commits per second: %s",
	},
	{
		Name:    "rollbacks",
		Help:    "Rolled back transactions per second",
		Query:   "SELECT sum(xact_rollback)::float8 FROM pg_stat_database",
		Kind:    model.Rate,
		Label:   "rollbacks",
		Unit:    "/s",
		Message: "Rollbacks per second: %s",
	},
	{
		Name:    "deadlocks",
		Help:    "Deadlocks per second",
		Query:   "SELECT sum(deadlocks)::float8 FROM pg_stat_database",
		Kind:    model.Rate,
		Label:   "deadlocks",
		Unit:    "/s",
		Message: "Deadlocks per second: %s",
	},
	{
		Name:    "tuples_returned",
		Help:    "Rows returned by queries per second",
		Query:   "SELECT sum(tup_returned)::float8 FROM pg_stat_database",
		Kind:    model.Rate,
		Label:   "tuples_returned",
		Unit:    "/s",
		Message: "Tuples returned per second: %s",
	},
}
