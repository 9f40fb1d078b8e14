// Package css provides a mutable CSS document tree built on top of
// tdewolff/parse tokenizer.
//
// The tree keeps source order and positions, so stylesheets can be edited
// in place and written back:
//
//   - Rule: selector text plus declarations, grouped selectors stay together
//     (h2, h3, h4)
//   - Declaration: property, value text and !important flag
//   - AtRule: statement (@import) or block at-rule, @media and @supports
//     blocks hold nested rules, @font-face and @page hold declarations. Blocks
//     of at-rules the tokenizer has no grammar for (@container, @scope) are
//     parsed again as rule lists, and kept verbatim in AtRule.Raw when that
//     fails
//
// # Normalization
//
// Parsing is lossy in formatting only. Comments are dropped, whitespace runs
// collapse, commas are followed by single space and selector combinators
// are surrounded by spaces. @charset is dropped since output is always UTF-8,
// use Decode to convert input.
//
// # Errors
//
// Parse never fails. Malformed constructs are skipped by the tokenizer and
// reported in Stylesheet.Warnings with their line and column.
package css
