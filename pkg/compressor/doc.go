// Package compressor shrinks a conversation's token footprint before it
// reaches a provider, in five independently-recoverable stages: whitespace
// normalization, structural (fenced-code/XML-tag) deduplication, a symbol
// table for repeated long phrases, per-code-block whitespace cleanup plus
// cross-block deduplication, and a last-resort context trimmer for very
// long conversations. None of the stages reorder messages, rename
// identifiers, drop the latest user message, or drop system instructions.
package compressor
