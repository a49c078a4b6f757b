// Package report renders a checker.Result for the operator. The text
// format prints the classic status lines; json and yaml emit the whole
// result as a document; template renders one line per reported file
// through valyala/fasttemplate with single-brace {tag} placeholders.
package report
