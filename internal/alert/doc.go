// Package alert receives SLO alerts from the monitoring side and drives a
// full impact run: resolve the violated rule, calculate impacts, provision an
// issue per notification and record what was reported.
package alert
