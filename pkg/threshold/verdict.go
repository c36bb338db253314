package threshold

// Verdict is the severity of a single finding or of a whole check run.
type Verdict int64

const (
	// OK is used for normal exits.
	OK = Verdict(0)

	// Warning is used for warnings.
	Warning = Verdict(1)

	// Critical is used for critical errors.
	Critical = Verdict(2)

	// Unknown is used when the check runs into a problem itself.
	// It is never the outcome of Evaluate.
	Unknown = Verdict(3)
)

func (v Verdict) String() string {
	switch v {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	}

	return "UNKNOWN"
}

// ExitCode returns the monitoring plugin exit code for this verdict.
func (v Verdict) ExitCode() int {
	return int(v)
}

// Escalate returns the more severe of both verdicts. Unknown only wins
// if both sides are unknown, it is not part of the severity order.
func (v Verdict) Escalate(other Verdict) Verdict {
	switch {
	case v == Unknown:
		return other
	case other == Unknown:
		return v
	case other > v:
		return other
	}

	return v
}

// Worst reduces a list of verdicts to the most severe one, OK for an empty list.
func Worst(verdicts ...Verdict) Verdict {
	res := OK
	for _, v := range verdicts {
		res = res.Escalate(v)
	}

	return res
}
