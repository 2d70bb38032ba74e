// Package syntax provides a lossless, error-recovering parser for JSON,
// JavaScript and TypeScript.
//
// # Overview
//
// The parser produces a concrete syntax tree (CST) that keeps every byte of
// the input. Whitespace and comments are attached to tokens as trivia, so
// the source can always be rebuilt from the tree:
//
//	tree, diags := syntax.Parse(src, syntax.WithMode(syntax.TypeScript))
//	tree.Text() == string(src) // always true
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │   (Tree)    │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                           │                   │
//	                           ▼                   ▼
//	                    ┌─────────────┐     ┌─────────────┐
//	                    │   Trivia    │     │   Missing   │
//	                    │ attachment  │     │   & Bogus   │
//	                    └─────────────┘     └─────────────┘
//
// # Trivia
//
// A token owns the trivia on its own line up to and including the line
// break as trailing trivia. Everything after that line break belongs to the
// next token as leading trivia. The EOF token carries what remains at the
// end of the file.
//
// # Error Recovery
//
// Parsing never fails. When a required child is absent the parser reports
// "expected X but instead found Y", records a Missing element in its place
// and continues at the next synchronization point of the enclosing list.
// Tokens that cannot start anything are wrapped into Bogus nodes. Only one
// diagnostic is reported per source position.
//
// # Tree
//
// Nodes and tokens are stored in flat arenas owned by the Tree and addressed
// by NodeID and TokenID. Node handles are cheap values; the tree is
// immutable once Parse returns and may be shared between goroutines.
package syntax
