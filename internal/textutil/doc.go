// Package textutil provides low-level text helpers shared by the matching
// and caching layers.
//
// The primary use cases are:
//   - Tokenizing artist and album names for word-order-insensitive comparison
//   - Folding diacritics so accented and plain spellings compare equal
//   - Sanitizing free-form values into safe cache-key tokens
//
// Tokenization lowercases text and splits on non-alphanumeric characters.
// Unlike a search tokenizer it keeps single-character tokens: album titles
// lean on short words ("x", "ok", "ep") that must survive comparison.
package textutil
