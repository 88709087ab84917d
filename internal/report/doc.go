// Package report builds the consolidated sitewide summary from merged
// page reports, computes the run verdict, and renders the summary as JSON
// or Markdown for the reporting layer. Only structure is produced here;
// visual styling is out of scope.
package report
