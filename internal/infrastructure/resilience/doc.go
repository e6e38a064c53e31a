/*
Package resilience provides a circuit breaker for resources that fail in
bursts, such as a pty layer that has run out of devices or a shell binary
that cannot start.

# Usage

	breaker := resilience.New("spawn", resilience.Settings{
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("Breaker state changed", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	err := breaker.Do(func() error {
		_, err := spawner.Spawn(sink)
		return err
	})

# States

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[MaxRequests successes]-> Closed
	                                               |
	                                           [failure]
	                                               |
	                                               v
	                                             Open

Each transition starts a new generation; outcomes reported for calls that
began in an older generation are ignored.
*/
package resilience
