// Package master folds validated records into a run-wide Summary and
// synthesises the project's master record from it.
//
// Records are folded strictly in file order. The summary keeps the first
// value seen for each shared attribute (organism, DBLink, dates) together
// with a divergence marker, and running intersections for comments,
// structured comments, keywords and publications. Finish turns aggregate
// disagreements into master-level diagnostics; Build writes what survived.
package master
