// Package output formats changelogs and reports for files or stdout.
//
// Three changelog formats are supported:
//   - markdown: entries grouped under a heading per date
//   - json: {generated_at, changelog, statistics}
//   - csv: one row per commit with hash, date, author, message, summary
//
// Use [GetWriter] to obtain a [Writer] for a format string, then call
// [Writer.Write] with an [io.Writer] and a [*Changelog]. [WriteReport] picks
// the destination. [WriteQualityReport] and [WriteComparison] render the
// commit quality and experiment reports.
package output
