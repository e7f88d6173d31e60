// Package markdown converts markdown text to and from the typed document tree.
//
// Parsing uses goldmark with the GFM table and strikethrough extensions.
// Leaf blocks keep their inline markdown verbatim so that serialising an
// unedited tree reproduces the source blocks. A leading YAML frontmatter
// block becomes a yaml node whose decoded fields are kept in its data bag.
package markdown
