package config

import "github.com/urfave/cli/v2"

// Flags are declared once, geth-utils style, so both the `cli` and `file`
// subcommands in cmd/vandal share identical names, defaults, and usage text
// (spec.md §6).
var (
	ConfigFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML config file layered beneath CLI flags",
	}
	IPCFlag = &cli.StringFlag{
		Name:  "ipc",
		Usage: "path to the node's IPC socket",
		Value: DefaultIPCPath,
	}
	HeuristicsFlag = &cli.StringFlag{
		Name:  "heuristics",
		Usage: "comma-separated heuristic names to run (default: all registered)",
	}
	HeuristicDirFlag = &cli.StringFlag{
		Name:  "heuristic-dir",
		Usage: "directory to scan for dynamically loaded heuristics (unused: heuristics.Registry is a static, compile-time table)",
	}
	BlockFlag = &cli.StringFlag{
		Name:  "block",
		Usage: "starting block height, or \"latest\", for streaming mode",
		Value: DefaultBlock,
	}
	TxFlag = &cli.StringFlag{
		Name:  "tx",
		Usage: "transaction hash to analyze (required in file mode)",
	}
	OutputFlag = &cli.StringFlag{
		Name:  "output",
		Usage: "directory for per-heuristic JSON output (stdout table if omitted)",
	}
	CPUProfileFlag = &cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "write a CPU profile of the analysis pipeline to this path",
	}
)

// FromContext resolves Defaults(), an optional TOML file named by
// --config, and this invocation's explicitly-set flags, in that increasing
// order of precedence (spec.md §6; SPEC_FULL §A "Configuration").
func FromContext(c *cli.Context) (Config, error) {
	cfg, err := LoadFile(c.String(ConfigFlag.Name), Defaults())
	if err != nil {
		return Config{}, err
	}

	if c.IsSet(IPCFlag.Name) {
		cfg.IPCPath = c.String(IPCFlag.Name)
	}
	if c.IsSet(HeuristicsFlag.Name) {
		cfg.Heuristics = c.String(HeuristicsFlag.Name)
	}
	if c.IsSet(HeuristicDirFlag.Name) {
		cfg.HeuristicDir = c.String(HeuristicDirFlag.Name)
	}
	if c.IsSet(BlockFlag.Name) {
		cfg.Block = c.String(BlockFlag.Name)
	}
	if c.IsSet(TxFlag.Name) {
		cfg.Tx = c.String(TxFlag.Name)
	}
	if c.IsSet(OutputFlag.Name) {
		cfg.OutputDir = c.String(OutputFlag.Name)
	}
	if c.IsSet(CPUProfileFlag.Name) {
		cfg.CPUProfile = c.String(CPUProfileFlag.Name)
	}

	return cfg, nil
}
