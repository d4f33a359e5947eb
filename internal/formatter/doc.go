// package formatter serializes the result set: the combined zip archive and human readable conversion reports (CSV,
// Markdown, plain text).
package formatter
