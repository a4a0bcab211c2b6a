// Package trace decodes the line-oriented Vandal optrace format into a flat
// sequence of RawOp records (spec §4.1).
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/vandalgo/vandal/evmtypes"
)

// ErrEmptyTrace is returned when a trace contains no non-empty records.
var ErrEmptyTrace = errors.New("trace: empty trace")

// FormatError reports a malformed trace line: an unparseable field or an
// unrecognized opcode mnemonic. It carries the offending line's index so
// callers can log a precise, per-transaction message (spec §7).
type FormatError struct {
	LineIndex int
	Line      string
	Err       error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("trace: malformed record at line %d (%q): %v", e.LineIndex, e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// RawOp is a single decoded trace record (spec §3).
type RawOp struct {
	PC        uint64
	Opcode    evmtypes.OpCode
	CallIndex uint32
	Depth     uint16
	OpIndex   uint32
	Value     *uint256.Int // traced value; an empty "0x" field decodes to zero
	Extra     *uint256.Int // nil unless the record carried a "val:extra" pair
}

// HasValue reports whether this op carries a concrete traced value.
func (r RawOp) HasValue() bool { return r.Value != nil }

// Decode parses the newline-separated optrace body into an ordered slice of
// RawOp. Each non-empty line is a 7-field CSV:
// "pc,call_index,depth,opcode,_,_,value_field"; value_field is
// "0x" | "0xHEX" | "0xHEX:0xHEX" (primary[:extra]). The OpIndex assigned to
// each op is its position among *all* lines (blank lines included), matching
// the original decoder's line-based enumeration.
//
// Decode returns ErrEmptyTrace if the optrace has no non-empty lines, and a
// *FormatError wrapping the first malformed line or unknown opcode.
func Decode(optrace string) ([]RawOp, error) {
	scanner := bufio.NewScanner(strings.NewReader(optrace))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ops []RawOp
	lineIndex := -1
	for scanner.Scan() {
		lineIndex++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		op, err := decodeLine(line, uint32(lineIndex))
		if err != nil {
			return nil, &FormatError{LineIndex: lineIndex, Line: line, Err: err}
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: reading optrace: %w", err)
	}
	if len(ops) == 0 {
		return nil, ErrEmptyTrace
	}
	return ops, nil
}

var errFieldCount = errors.New("expected 7 comma-separated fields")

func decodeLine(line string, opIndex uint32) (RawOp, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 7 {
		return RawOp{}, errFieldCount
	}

	pc, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return RawOp{}, fmt.Errorf("pc: %w", err)
	}
	callIndex, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return RawOp{}, fmt.Errorf("call_index: %w", err)
	}
	depth, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return RawOp{}, fmt.Errorf("depth: %w", err)
	}
	opcode, ok := evmtypes.ByName(strings.TrimSpace(fields[3]))
	if !ok {
		return RawOp{}, fmt.Errorf("unknown opcode %q", fields[3])
	}

	value, extra, err := parseValueField(fields[6])
	if err != nil {
		return RawOp{}, err
	}

	return RawOp{
		PC:        pc,
		Opcode:    opcode,
		CallIndex: uint32(callIndex),
		Depth:     uint16(depth),
		OpIndex:   opIndex,
		Value:     value,
		Extra:     extra,
	}, nil
}

// parseValueField parses "0x" | "0xHEX" | "0xHEX:0xHEX" into (value, extra).
// "0x" alone yields a zero value and nil extra, matching the original
// decoder's treatment of an explicit empty hex string as 0.
func parseValueField(field string) (value, extra *uint256.Int, err error) {
	primary, secondary, hasSecondary := strings.Cut(field, ":")

	value, err = parseHex(primary)
	if err != nil {
		return nil, nil, fmt.Errorf("value: %w", err)
	}

	if hasSecondary && secondary != "0x" {
		extra, err = parseHex(secondary)
		if err != nil {
			return nil, nil, fmt.Errorf("extra: %w", err)
		}
	}
	return value, extra, nil
}

func parseHex(s string) (*uint256.Int, error) {
	if s == "0x" {
		return uint256.NewInt(0), nil
	}
	if !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("not a hex literal: %q", s)
	}
	v, err := uint256.FromHex(s)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", s, err)
	}
	return v, nil
}
