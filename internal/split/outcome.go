package split

// OutcomeKind classifies the terminal state of one encode job.
type OutcomeKind int

const (
	// OutcomeOK means the track was written to its output path.
	OutcomeOK OutcomeKind = iota
	// OutcomeSkipped means the output already existed and the run was
	// configured not to overwrite.
	OutcomeSkipped
	// OutcomeFilesystem means directory creation for the output path
	// failed; the encoder was never started.
	OutcomeFilesystem
	// OutcomeEncode means the encoder process could not be started or
	// exited non-zero.
	OutcomeEncode
	// OutcomeTimedOut means the configured job timeout expired and the
	// encoder process was killed.
	OutcomeTimedOut
	// OutcomeCancelled means the run was cancelled before or while the
	// job executed.
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFilesystem:
		return "filesystem error"
	case OutcomeEncode:
		return "encode error"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Failed reports whether the outcome counts against the run's exit code.
func (k OutcomeKind) Failed() bool {
	return k != OutcomeOK && k != OutcomeSkipped
}

// Outcome is the terminal result of one track's encode job. The outcome
// list of a run is always in track order.
type Outcome struct {
	TrackNumber int
	TrackTitle  string
	OutputPath  string
	Kind        OutcomeKind
	Err         error
}

// Summary aggregates a run's outcome list.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Summarize counts outcomes by disposition.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch {
		case o.Kind == OutcomeSkipped:
			s.Skipped++
		case o.Kind.Failed():
			s.Failed++
		default:
			s.Succeeded++
		}
	}
	return s
}
