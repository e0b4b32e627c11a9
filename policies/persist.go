package policies

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/zeu5/gridchase-rl/core"
)

var (
	ErrUnknownFormat  = errors.New("unknown table format")
	ErrNonFiniteValue = errors.New("value is not finite")
)

type FormatKind int

const (
	// Delimited is one state, action, value triple per line.
	Delimited FormatKind = iota
	// JSONL is one {"state": ..., "entries": {action: value}} object per line.
	JSONL
)

func (k FormatKind) String() string {
	switch k {
	case Delimited:
		return "delimited"
	case JSONL:
		return "jsonl"
	}
	return fmt.Sprintf("FormatKind(%d)", int(k))
}

func (k FormatKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FormatKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "delimited", "":
		*k = Delimited
	case "jsonl":
		*k = JSONL
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(text))
	}
	return nil
}

// Format describes the on-disk layout of a table file.
type Format struct {
	Kind      FormatKind `yaml:"kind" json:"kind"`
	Delimiter string     `yaml:"delimiter" json:"delimiter"`
	Header    bool       `yaml:"header" json:"header"`
}

var header = []string{"state", "action", "value"}

// EvaderFormat matches the evader's table files: ';' separated, no header.
func EvaderFormat() Format {
	return Format{Kind: Delimited, Delimiter: ";"}
}

// PursuerFormat matches the pursuer's table files: ',' separated with a header.
func PursuerFormat() Format {
	return Format{Kind: Delimited, Delimiter: ",", Header: true}
}

func (f Format) comma() (rune, error) {
	if f.Delimiter == "" {
		return ';', nil
	}
	r := []rune(f.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", f.Delimiter)
	}
	return r[0], nil
}

// StateDecoder parses the persisted form of a state key.
type StateDecoder func(string) (core.State, error)

// SkippedLine records why a line of a table file was ignored.
type SkippedLine struct {
	Line   int
	Reason string
}

type LoadStats struct {
	Loaded  int
	Skipped []SkippedLine
	// Missing is set when the file did not exist.
	Missing bool
}

// Save overwrites path with every entry of q. The write is a single pass
// over a truncated file and is not atomic. Parent directories must exist.
func Save(path string, q *QTable, format Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating table file: %w", err)
	}
	w := bufio.NewWriter(file)
	switch format.Kind {
	case Delimited:
		err = writeDelimited(w, q, format)
	case JSONL:
		err = writeJSONL(w, q)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownFormat, format.Kind)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := file.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing table file %s: %w", path, err)
	}
	return nil
}

// Load reads path into q. Entries already in q are overwritten by entries in
// the file; within the file the last line for a key wins. A missing file is
// not an error. Malformed lines are skipped and reported in the stats.
func Load(path string, q *QTable, format Format, decode StateDecoder) (LoadStats, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return LoadStats{Missing: true}, nil
	}
	if err != nil {
		return LoadStats{}, fmt.Errorf("opening table file: %w", err)
	}
	defer file.Close()

	switch format.Kind {
	case Delimited:
		return readDelimited(file, q, format, decode)
	case JSONL:
		return readJSONL(file, q, decode)
	}
	return LoadStats{}, fmt.Errorf("%w: %v", ErrUnknownFormat, format.Kind)
}

func writeDelimited(w io.Writer, q *QTable, format Format) error {
	comma, err := format.comma()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if format.Header {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, e := range q.Entries() {
		record := []string{e.State.Hash(), e.Action.String(), strconv.FormatFloat(e.Value, 'g', -1, 64)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readDelimited(r io.Reader, q *QTable, format Format, decode StateDecoder) (LoadStats, error) {
	comma, err := format.comma()
	if err != nil {
		return LoadStats{}, err
	}
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	stats := LoadStats{}
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			stats.Skipped = append(stats.Skipped, SkippedLine{Line: perr.Line, Reason: perr.Err.Error()})
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("reading table file: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		if len(record) != 3 {
			stats.Skipped = append(stats.Skipped, SkippedLine{Line: line, Reason: fmt.Sprintf("expected 3 fields, got %d", len(record))})
			continue
		}
		state, action, value, err := parseEntry(record[0], record[1], record[2], decode)
		if err != nil {
			stats.Skipped = append(stats.Skipped, SkippedLine{Line: line, Reason: err.Error()})
			continue
		}
		q.Set(state, action, value)
		stats.Loaded++
	}
	return stats, nil
}

func isHeader(record []string) bool {
	if len(record) != len(header) {
		return false
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(record[i]), h) {
			return false
		}
	}
	return true
}

func parseEntry(stateStr, actionStr, valueStr string, decode StateDecoder) (core.State, core.Action, float64, error) {
	state, err := decode(strings.TrimSpace(stateStr))
	if err != nil {
		return nil, core.NoAction, 0, err
	}
	action, err := core.ParseAction(actionStr)
	if err != nil {
		return nil, core.NoAction, 0, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		return nil, core.NoAction, 0, fmt.Errorf("value %q: %w", valueStr, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, core.NoAction, 0, fmt.Errorf("value %q: %w", valueStr, ErrNonFiniteValue)
	}
	return state, action, value, nil
}

type jsonlRecord struct {
	State   string             `json:"state"`
	Entries map[string]float64 `json:"entries"`
}

func writeJSONL(w io.Writer, q *QTable) error {
	enc := json.NewEncoder(w)
	var cur *jsonlRecord
	for _, e := range q.Entries() {
		hash := e.State.Hash()
		if cur == nil || cur.State != hash {
			if cur != nil {
				if err := enc.Encode(cur); err != nil {
					return err
				}
			}
			cur = &jsonlRecord{State: hash, Entries: make(map[string]float64)}
		}
		cur.Entries[e.Action.String()] = e.Value
	}
	if cur != nil {
		return enc.Encode(cur)
	}
	return nil
}

func readJSONL(r io.Reader, q *QTable, decode StateDecoder) (LoadStats, error) {
	stats := LoadStats{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(strings.TrimSpace(scanner.Text())) == 0 {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			stats.Skipped = append(stats.Skipped, SkippedLine{Line: line, Reason: err.Error()})
			continue
		}
		state, err := decode(rec.State)
		if err != nil {
			stats.Skipped = append(stats.Skipped, SkippedLine{Line: line, Reason: err.Error()})
			continue
		}
		for name, value := range rec.Entries {
			action, err := core.ParseAction(name)
			if err != nil {
				stats.Skipped = append(stats.Skipped, SkippedLine{Line: line, Reason: err.Error()})
				continue
			}
			q.Set(state, action, value)
			stats.Loaded++
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading table file: %w", err)
	}
	return stats, nil
}
