// Package vault implements the markdown document store the pipeline writes
// into and the corpus index it dedupes against.
//
// The store is a plain filesystem tree of .md files with daily notes bucketed
// into year/month subfolders. The index is rebuilt by scanning the store at
// the start of every run; it is never persisted, which keeps it trivially
// consistent with whatever the vault actually contains.
package vault
