// Package csvstore reads and writes experiment trials as CSV, one row per
// trial and strategy, so that results can be charted again without rerunning.
package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/maze"
	"github.com/beka-birhanu/vinom-search/search"
)

var ErrBadHeader = errors.New("unexpected csv header")

// Header is the first record of every trials file.
var Header = []string{
	"trial", "seed", "strategy", "status", "target_terrain",
	"steps", "trajectory_length", "examinations", "replans", "unreachable_goals",
	"target_row", "target_col",
}

// WriteTrials writes the header followed by one record per trial.
func WriteTrials(w io.Writer, trials []dmn.Trial) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, t := range trials {
		r := t.Result
		record := []string{
			strconv.Itoa(t.Index),
			strconv.FormatInt(t.Seed, 10),
			r.Strategy.String(),
			r.Status.String(),
			r.TargetTerrain.String(),
			strconv.Itoa(r.Steps),
			strconv.Itoa(r.TrajectoryLength),
			strconv.Itoa(r.Examinations),
			strconv.Itoa(r.Replans),
			strconv.Itoa(r.UnreachableGoals),
			strconv.Itoa(r.FinalTarget.Row),
			strconv.Itoa(r.FinalTarget.Col),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTrials parses a file produced by WriteTrials. Trajectories and
// per-terrain examination counts are not part of the file.
func ReadTrials(r io.Reader) ([]dmn.Trial, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for idx, name := range Header {
		if header[idx] != name {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, idx+1, header[idx], name)
		}
	}

	var trials []dmn.Trial
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		t, err := parseRecord(record)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		trials = append(trials, t)
	}
	return trials, nil
}

func parseRecord(record []string) (dmn.Trial, error) {
	var (
		t    dmn.Trial
		errs []error
	)
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		errs = append(errs, err)
		return v
	}

	t.Index = atoi(record[0])
	seed, err := strconv.ParseInt(record[1], 10, 64)
	errs = append(errs, err)
	t.Seed = seed

	strategy, err := search.ParseStrategy(record[2])
	errs = append(errs, err)
	status, err := search.ParseStatus(record[3])
	errs = append(errs, err)
	terrain, err := maze.ParseTerrain(record[4])
	errs = append(errs, err)

	t.Result = search.Result{
		Status:           status,
		Strategy:         strategy,
		TargetTerrain:    terrain,
		Steps:            atoi(record[5]),
		TrajectoryLength: atoi(record[6]),
		Examinations:     atoi(record[7]),
		Replans:          atoi(record[8]),
		UnreachableGoals: atoi(record[9]),
		FinalTarget:      maze.CellPosition{Row: atoi(record[10]), Col: atoi(record[11])},
	}
	return t, errors.Join(errs...)
}
