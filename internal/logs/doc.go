// Package logs reads the daily zappavault log files for the CLI "logs"
// command.
//
// Latest finds the newest daily file under paths.log_dir; Tail returns its
// last lines or the lines written after a byte offset, optionally waiting for
// new output. A Match function narrows the lines, for example to one run id.
package logs
