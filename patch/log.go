package patch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// WriteLog writes patches to w as a JSON-lines log, one patch per
// line, in order.
func WriteLog(w io.Writer, patches []Patch) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range patches {
		if !patches[i].Op.Valid() {
			return fmt.Errorf("%w: entry %d has op %q", ErrBadLog, i, patches[i].Op)
		}
		if err := enc.Encode(&patches[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadLog reads a JSON-lines patch log written by WriteLog. Blank
// lines are skipped.
func ReadLog(r io.Reader) ([]Patch, error) {
	var res []Patch
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		d := sc.Bytes()
		if len(d) == 0 {
			continue
		}
		var p Patch
		if err := json.Unmarshal(d, &p); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadLog, line, err)
		}
		if !p.Op.Valid() {
			return nil, fmt.Errorf("%w: line %d: op %q", ErrBadLog, line, p.Op)
		}
		res = append(res, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// WriteCallLog writes serialized action calls as a JSON-lines log.
func WriteCallLog(w io.Writer, calls []Call) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range calls {
		if err := enc.Encode(&calls[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadCallLog reads a JSON-lines action call log.
func ReadCallLog(r io.Reader) ([]Call, error) {
	var res []Call
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		d := sc.Bytes()
		if len(d) == 0 {
			continue
		}
		var c Call
		if err := json.Unmarshal(d, &c); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadLog, line, err)
		}
		res = append(res, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
