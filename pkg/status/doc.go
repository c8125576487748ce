/*
Package status reports progress of a bulk file action.

	+------------+      processed       +-------------+
	| dispatcher | -------------------> |   Tracker   |
	+------------+                      +------+------+
	                                           |
	                              +------------+------------+
	                              |                         |
	                       +------+------+          +-------+-------+
	                       | BarTracker  |          |  LogTracker   |
	                       |   (pterm)   |          |   (zerolog)   |
	                       +-------------+          +---------------+

🎯 Purpose:
- Turns worker progress into a single monotonic counter
- Draws a progress bar on interactive terminals
- Falls back to periodic log lines otherwise
- Words progress the same way for both trackers

🔄 Flow:
1. StartOperation receives the number of queued files
2. Workers report how many files have finished, in any order
3. Stale values are dropped so the display never moves backwards
4. FinishOperation prints the final count

🔍 Example:

	tracker := status.NewBarTracker("Deleting files", os.Stderr)
	d := dispatch.New(4, dispatch.WithTracker(tracker))
	results := d.Run(ctx, dispatch.Delete{}, candidates)
*/
package status
