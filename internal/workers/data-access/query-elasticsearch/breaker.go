// internal/workers/data-access/query-elasticsearch/breaker.go
package queryelasticsearch

import (
	"context"
	stderrors "errors"

	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/metrics"
	"atio-knowledge-base/internal/workers/data-access/query-elasticsearch/queries"

	gobreaker "github.com/sony/gobreaker/v2"
)

const breakerName = "elasticsearch"

// searchBreaker opens after FailureThreshold consecutive backend failures.
// Caller mistakes (bad query type, missing index) do not count against it.
type searchBreaker struct {
	cb     *gobreaker.CircuitBreaker[*queries.QueryResult]
	logger logger.Logger
}

func newSearchBreaker(cfg BreakerConfig, log logger.Logger) *searchBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.SearchBreakerState.WithLabelValues(breakerName).Set(0)

	b := &searchBreaker{logger: log}
	b.cb = gobreaker.NewCircuitBreaker[*queries.QueryResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isCallerError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.SearchBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return b
}

func (b *searchBreaker) Execute(fn func() (*queries.QueryResult, error)) (*queries.QueryResult, error) {
	return b.cb.Execute(fn)
}

func (b *searchBreaker) State() gobreaker.State {
	return b.cb.State()
}

func isCallerError(err error) bool {
	return stderrors.Is(err, queries.ErrUnknownQueryType) ||
		stderrors.Is(err, queries.ErrMissingIndex) ||
		stderrors.Is(err, queries.ErrMissingID) ||
		stderrors.Is(err, queries.ErrIndexNotFound) ||
		stderrors.Is(err, context.Canceled)
}

func isBreakerRejection(err error) bool {
	return stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
