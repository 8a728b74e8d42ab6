package roster

import (
	"errors"
	"math"
	"sync"

	"github.com/warp/comp-calculator/engine"
)

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor runs the batch calculation. Records are independent, so the work
// is spread over Workers goroutines; output order always matches input order.
type Processor struct {
	// Workers is the number of goroutines; values below 2 run sequentially.
	Workers int

	// OnRecord, if set, is called once per finished record. Calls are
	// serialized, so it need not be safe for concurrent use.
	OnRecord func()
}

// CalculateAll returns a new slice with every record calculated. The input
// is not modified, and calling it twice on the same input gives identical
// results.
func (p *Processor) CalculateAll(records []Record) []Record {
	out := make([]Record, len(records))
	if len(records) == 0 {
		return out
	}

	var mu sync.Mutex
	done := func() {
		if p.OnRecord == nil {
			return
		}
		mu.Lock()
		p.OnRecord()
		mu.Unlock()
	}

	workers := p.Workers
	if workers > len(records) {
		workers = len(records)
	}
	if workers < 2 {
		for i, r := range records {
			out[i] = Calculate(r)
			done()
		}
		return out
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = Calculate(records[i])
				done()
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

// CalculateAll runs the batch sequentially.
func CalculateAll(records []Record) []Record {
	return (&Processor{}).CalculateAll(records)
}

// =============================================================================
// PER-RECORD CALCULATION
// =============================================================================

// Calculate fills in one record. Churn budgets are always computed;
// retention rate and attainment only when churn is present and positive.
// Single-entity validation is not applied; violations become Warnings.
// A value that comes out NaN or infinite (a negative target) is left absent.
func Calculate(r Record) Record {
	out := r
	out.ChurnARR = copyFloat(r.ChurnARR)
	out.RetentionRate = nil
	out.Attainment = nil

	maxAllowed, target := engine.ChurnBudgets(r.BookStartARR, r.MinRetentionTarget, r.MaxRetentionTarget)
	out.MaxQuarterlyChurnAllowed = finitePtr(maxAllowed)
	out.QuarterlyChurnTarget = finitePtr(target)

	if r.HasChurn() {
		annual := engine.AnnualRetention(r.BookStartARR, *r.ChurnARR)
		out.RetentionRate = finitePtr(annual)
		out.Attainment = finitePtr(engine.ScoreAttainment(annual, r.MinRetentionTarget, r.MaxRetentionTarget))
	}

	out.Warnings = Warnings(r)
	return out
}

// Warnings lists the single-entity validation rules the record breaks.
func Warnings(r Record) []Warning {
	var warnings []Warning
	if r.BookStartARR == 0 {
		warnings = append(warnings, Warning{
			Code:    WarnZeroBookARR,
			Message: "book start ARR is zero; retention is reported as 0",
		})
	}

	in := engine.RetentionInput{
		BookARR:            r.BookStartARR,
		MinRetentionTarget: r.MinRetentionTarget,
		MaxRetentionTarget: r.MaxRetentionTarget,
	}
	if r.ChurnARR != nil {
		in.ChurnARR = *r.ChurnARR
	}
	for _, v := range engine.Violations(engine.ValidateRetention(in)) {
		code := WarnInvertedTargetBand
		switch {
		case errors.Is(v, engine.ErrChurnExceedsBook):
			code = WarnChurnExceedsBook
		case errors.Is(v, engine.ErrTargetOutOfRange):
			code = WarnTargetOutOfRange
		}
		warnings = append(warnings, Warning{Code: code, Message: v.Error()})
	}
	return warnings
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return float64Ptr(v)
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return float64Ptr(*p)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary aggregates a calculated batch for the print view.
type Summary struct {
	Reps              int     `json:"reps"`
	WithAttainment    int     `json:"with_attainment"`
	WithWarnings      int     `json:"with_warnings"`
	TotalBookARR      float64 `json:"total_book_arr"`
	TotalChurnARR     float64 `json:"total_churn_arr"`
	AverageAttainment float64 `json:"average_attainment"`
}

// Summarize totals the batch. AverageAttainment covers only records that
// have an attainment value and is zero when none do.
func Summarize(records []Record) Summary {
	var s Summary
	var attainment float64
	for _, r := range records {
		s.Reps++
		s.TotalBookARR += r.BookStartARR
		if r.ChurnARR != nil {
			s.TotalChurnARR += *r.ChurnARR
		}
		if r.Attainment != nil {
			s.WithAttainment++
			attainment += *r.Attainment
		}
		if len(r.Warnings) > 0 {
			s.WithWarnings++
		}
	}
	if s.WithAttainment > 0 {
		s.AverageAttainment = attainment / float64(s.WithAttainment)
	}
	return s
}
