// Package fluid resolves range notation in stylesheet declarations into
// screen-size-responsive CSS.
//
// A declaration value may carry the notation
//
//	range(min, max[, screenMin, screenMax])
//
// where min and max are lengths and screenMin/screenMax are the viewport
// widths between which the value grows (or shrinks) linearly. One of min or
// max may be a bare number - a ratio - which borrows the unit of the other
// endpoint:
//
//	range(16px, 2)    max = 16px * 2
//	range(2, 32px)    min = 32px / 2
//	range(-2, 16px)   min = 16px * 2 (negative ratio flips the operation)
//	range(32px, -2)   max = 32px / 2
//
// Pixel values are converted to rem using the configured root font size.
//
// # Output
//
// When clamping is enabled and min <= max a single declaration is produced:
//
//	font-size: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
//
// Otherwise the declaration becomes min and two @media blocks are inserted
// right after the rule: one interpolating with calc() from screenMin and one
// pinning max from screenMax.
//
// # Shorthands
//
// margin, padding and their -block/-inline variants are expanded to longhands
// first, so every side may carry its own range:
//
//	margin: range(8px, 16px) range(4px, 8px);
//
// # Usage
//
//	resolver, err := fluid.NewResolver(fluid.DefaultOptions(), logger)
//	sheet := css.NewParser(logger).Parse(data)
//	stats, err := resolver.Process(sheet)
//	sheet.WriteTo(w)
package fluid
