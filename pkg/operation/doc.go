/*
Package operation wires the engine together: master list, selection, one
scan per folder, parallel dispatch and the final report.

	+-------------+    +-----------+    +----------+    +------------+    +--------+
	| master list | -> | selection | -> | scan x N | -> | dispatcher | -> | report |
	+-------------+    +-----------+    +----------+    +------------+    +--------+

🎯 Purpose:
- Runs delete, copy and plan operations from a validated config.Config
- Fails before touching files when the master list or a folder is missing
- Skips missing default split folders for copy runs
- Returns a report for every run that reached the scan phase

🔍 Example:

	op, err := operation.New(operation.Options{Config: cfg, Console: console})
	if err != nil {
		return err
	}
	rep, err := operation.NewRunner(console, os.Stdout, cfg.ReportPath).Run(ctx, op)
*/
package operation
