package xbrl

import "strings"

// Temporal classifies which reporting period a context refers to.
type Temporal int

const (
	TemporalUnspecified Temporal = iota
	TemporalCurrent
	TemporalPrior
	TemporalForecast
)

// Period classifies a context as a point-in-time or a span measure.
type Period int

const (
	PeriodUnspecified Period = iota
	PeriodInstant
	PeriodDuration
)

// Scope classifies the consolidation scope of a context.
type Scope int

const (
	ScopeUnspecified Scope = iota
	ScopeConsolidated
	ScopeNonConsolidated
)

// ContextBucket is the semantic classification of one context
// reference string. It is a pure function of the string and carries
// no identity of its own.
type ContextBucket struct {
	Temporal Temporal
	Period   Period
	Scope    Scope
}

// BucketFor classifies a context reference via its substring markers.
// Prior periods appear under two spellings, the plain prior-year
// marker and a one-year-back offset marker.
func BucketFor(contextRef string) ContextBucket {
	var b ContextBucket

	switch {
	case strings.Contains(contextRef, "CurrentYear"):
		b.Temporal = TemporalCurrent
	case strings.Contains(contextRef, "PriorYear"), strings.Contains(contextRef, "Prior1Year"):
		b.Temporal = TemporalPrior
	case strings.Contains(contextRef, "NextYear"):
		b.Temporal = TemporalForecast
	}

	switch {
	case strings.Contains(contextRef, "Duration"):
		b.Period = PeriodDuration
	case strings.Contains(contextRef, "Instant"):
		b.Period = PeriodInstant
	}

	// The non-consolidated marker embeds the consolidated one, so it
	// must be tested first.
	switch {
	case strings.Contains(contextRef, "NonConsolidatedMember"):
		b.Scope = ScopeNonConsolidated
	case strings.Contains(contextRef, "ConsolidatedMember"):
		b.Scope = ScopeConsolidated
	}

	return b
}

// SummaryKeySuffix derives the catch-all key suffix used when sweeping
// the summary namespace. Forecast contexts take the same suffix for
// both period kinds; a bucket with no recognized temporal or period
// marker yields no suffix at all.
func (b ContextBucket) SummaryKeySuffix() string {
	switch b.Temporal {
	case TemporalCurrent:
		switch b.Period {
		case PeriodDuration:
			return "_current"
		case PeriodInstant:
			return "_currentyear"
		}
	case TemporalPrior:
		switch b.Period {
		case PeriodDuration:
			return "_prior"
		case PeriodInstant:
			return "_prioryear"
		}
	case TemporalForecast:
		return "_forecast"
	}
	return ""
}

// AttachmentKeySuffix derives the catch-all key suffix used when
// sweeping the attachment namespace, where instant measures are the
// default reading and span measures are marked explicitly.
func (b ContextBucket) AttachmentKeySuffix() string {
	switch b.Temporal {
	case TemporalCurrent:
		switch b.Period {
		case PeriodInstant:
			return "_current"
		case PeriodDuration:
			return "_duration_current"
		}
	case TemporalPrior:
		switch b.Period {
		case PeriodInstant:
			return "_prior"
		case PeriodDuration:
			return "_duration_prior"
		}
	}
	return ""
}
