// Package gate decides whether a producer may create output for a title.
//
// A title is refused when its normalized form contains a denylisted
// live-stream marker, or when any file anywhere below the root carries a
// recognized stage suffix and contains the normalized title as a substring.
// The containment test is deliberately plain: near-duplicate titles are not
// caught here.
package gate
