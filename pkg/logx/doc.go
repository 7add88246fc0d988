// Package logx configures datalys2's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Output/level swappable at runtime via Service.Apply
package logx
