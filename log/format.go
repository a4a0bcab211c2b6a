package log

import (
	"math/big"
	"strconv"
	"strings"
)

// FormatLogfmtInt64 renders n the way geth's log package does for large
// counters: comma-grouped once it reaches six digits, to keep block numbers
// and gas totals readable in a terminal.
func FormatLogfmtInt64(n int64) string {
	if n < 0 {
		return "-" + FormatLogfmtUint64(uint64(-n))
	}
	return FormatLogfmtUint64(uint64(n))
}

// FormatLogfmtUint64 is FormatLogfmtInt64 for the unsigned case.
func FormatLogfmtUint64(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if n < 100000 {
		return s
	}
	return groupThousands(s)
}

func formatLogfmtBigInt(n *big.Int) string {
	if n == nil {
		return "<nil>"
	}
	if n.IsInt64() {
		return FormatLogfmtInt64(n.Int64())
	}
	s := new(big.Int).Abs(n).String()
	grouped := groupThousands(s)
	if n.Sign() < 0 {
		return "-" + grouped
	}
	return grouped
}

// groupThousands inserts a comma every three digits from the right, leaving
// digits below 100,000 untouched by callers above.
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
